package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/iksnae/jarvis/internal"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type testSession struct {
	controller *internal.SessionController
	backend    *internal.FakeBackend
	server     *Server
}

func newTestSession(t *testing.T, replies ...[]internal.RawFragment) *testSession {
	t.Helper()
	backend := &internal.FakeBackend{ConversationID: "conv-1", Replies: replies}
	controller, err := internal.NewSessionController(backend)
	require.NoError(t, err)
	controller.Init(context.Background(), &internal.FakeContextLister{Contexts: []internal.BusinessContext{
		{ID: "sales", Name: "Sales"},
		{ID: "homeloan", Name: "Home Loan"},
	}})
	return &testSession{
		controller: controller,
		backend:    backend,
		server:     NewServer(controller, Options{}),
	}
}

func (ts *testSession) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.server.Router().ServeHTTP(rec, req)
	return rec
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) sessionView {
	t.Helper()
	var view sessionView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	return view
}

var revenueReply = []internal.RawFragment{
	{Kind: internal.FragmentText, Content: "Revenue doubled."},
	{Kind: internal.FragmentQuery, Description: "Revenue by month", Data: internal.CreateTestRecords(
		[]string{"Month", "Revenue"},
		[]any{"2024-01", "1000"},
		[]any{"2024-02", "2000"},
	)},
	{Kind: internal.FragmentText, Content: "Would you like to see revenue by region?"},
}

func TestHealth(t *testing.T) {
	ts := newTestSession(t)
	rec := ts.do(t, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"message":"Jarvis client running"}`, rec.Body.String())
}

func TestContexts(t *testing.T) {
	ts := newTestSession(t)
	rec := ts.do(t, http.MethodGet, "/api/contexts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[{"id":"sales","name":"Sales"},{"id":"homeloan","name":"Home Loan"}]`, rec.Body.String())
}

func TestContexts_EmptyIsArray(t *testing.T) {
	controller, err := internal.NewSessionController(&internal.FakeBackend{})
	require.NoError(t, err)
	srv := NewServer(controller, Options{AllowedOrigins: []string{"http://localhost:3000"}})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/contexts", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())
}

func TestPrompt(t *testing.T) {
	ts := newTestSession(t, revenueReply)

	rec := ts.do(t, http.MethodPost, "/api/session/prompt", `{"prompt":"revenue by month"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	view := decodeView(t, rec)
	require.Equal(t, "conv-1", view.ConversationID)
	require.False(t, view.Pending)
	require.Equal(t, "sales", view.Context.ID)
	require.Len(t, view.Messages, 4)
	require.Equal(t, internal.KindUserPrompt, view.Messages[0].Kind)
	require.Equal(t, internal.KindTable, view.Messages[2].Kind)
	require.Equal(t, 2, view.Messages[2].Index)
	require.Equal(t, [][]string{{"Jan 2024", "1,000"}, {"Feb 2024", "2,000"}}, view.Messages[2].FormattedRows)
	require.True(t, view.Messages[3].IsSuggestion)
}

func TestPrompt_BadRequests(t *testing.T) {
	ts := newTestSession(t)

	rec := ts.do(t, http.MethodPost, "/api/session/prompt", `not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/session/prompt", `{"prompt":"   "}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, ts.backend.CallsSnapshot())
}

func TestPrompt_BusyConflict(t *testing.T) {
	ts := newTestSession(t, revenueReply)
	ts.backend.Block = make(chan struct{})
	ts.backend.Entered = make(chan struct{}, 1)

	done := make(chan *httptest.ResponseRecorder)
	go func() { done <- ts.do(t, http.MethodPost, "/api/session/prompt", `{"prompt":"first"}`) }()
	<-ts.backend.Entered

	rec := ts.do(t, http.MethodPost, "/api/session/prompt", `{"prompt":"second"}`)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/session", "")
	require.True(t, decodeView(t, rec).Pending)

	close(ts.backend.Block)
	require.Equal(t, http.StatusOK, (<-done).Code)
}

func TestSuggestion(t *testing.T) {
	ts := newTestSession(t, revenueReply, []internal.RawFragment{
		{Kind: internal.FragmentText, Content: "East leads."},
	})
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/api/session/prompt", `{"prompt":"revenue"}`).Code)

	rec := ts.do(t, http.MethodPost, "/api/session/suggestions/1", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/session/suggestions/x", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/session/suggestions/3", "")
	require.Equal(t, http.StatusOK, rec.Code)

	calls := ts.backend.CallsSnapshot()
	require.Len(t, calls, 2)
	require.Equal(t, "followup", calls[1].Op)
	require.Equal(t, "Would you like to see revenue by region?", calls[1].Prompt)
}

func TestSuggestion_BusyConflict(t *testing.T) {
	ts := newTestSession(t, revenueReply, []internal.RawFragment{
		{Kind: internal.FragmentText, Content: "East leads."},
	})
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/api/session/prompt", `{"prompt":"revenue"}`).Code)

	ts.backend.Block = make(chan struct{})
	ts.backend.Entered = make(chan struct{}, 1)
	done := make(chan *httptest.ResponseRecorder)
	go func() { done <- ts.do(t, http.MethodPost, "/api/session/prompt", `{"prompt":"by region"}`) }()
	<-ts.backend.Entered

	rec := ts.do(t, http.MethodPost, "/api/session/suggestions/3", "")
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), internal.ErrBusy.Error())

	close(ts.backend.Block)
	require.Equal(t, http.StatusOK, (<-done).Code)
	require.Len(t, ts.backend.CallsSnapshot(), 2)
}

// busySession reports idle but refuses every submission, as when an
// exchange starts between a status check and the submit.
type busySession struct {
	*internal.SessionController
}

func (b busySession) SubmitSuggestion(ctx context.Context, index int) error {
	return internal.ErrBusy
}

func TestSuggestion_BusyAfterIdleCheck(t *testing.T) {
	controller, err := internal.NewSessionController(&internal.FakeBackend{ConversationID: "conv-1"})
	require.NoError(t, err)
	server := NewServer(busySession{controller}, Options{})

	req := httptest.NewRequest(http.MethodPost, "/api/session/suggestions/0", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestSwitchContext(t *testing.T) {
	ts := newTestSession(t, revenueReply)
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/api/session/prompt", `{"prompt":"revenue"}`).Code)

	rec := ts.do(t, http.MethodPut, "/api/session/context", `{"id":"unknown"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPut, "/api/session/context", `{"id":"homeloan"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeView(t, rec)
	require.Empty(t, view.ConversationID)
	require.Empty(t, view.Messages)
	require.Equal(t, "Home Loan", view.Context.Name)
}

func TestTableCSV(t *testing.T) {
	ts := newTestSession(t, revenueReply)
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/api/session/prompt", `{"prompt":"revenue"}`).Code)

	rec := ts.do(t, http.MethodGet, "/api/session/messages/2/csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Header().Get("Content-Disposition"), "table_2.csv")
	require.Equal(t, "Month,Revenue\n\"2024-01\",\"1000\"\n\"2024-02\",\"2000\"", rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/api/session/messages/1/csv", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/session/messages/42/csv", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestSession(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/session/prompt", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()

	ts.server.Router().ServeHTTP(rec, req)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
