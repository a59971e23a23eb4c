package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// RecordedRequest is a request seen by a FakeBackendServer
type RecordedRequest struct {
	Path string
	Body map[string]any
}

// FakeBackendServer imitates the analytics backend over HTTP
type FakeBackendServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []RecordedRequest

	startBody    string
	followupBody string
	contextsBody string
	status       int
}

// NewFakeBackendServer starts a server that answers with the fixtures in
// this package. It is closed when the test ends.
func NewFakeBackendServer(t *testing.T) *FakeBackendServer {
	t.Helper()
	f := &FakeBackendServer{
		startBody:    StartResponseJSON,
		followupBody: FollowupResponseJSON,
		contextsBody: ContextsJSON,
		status:       http.StatusOK,
	}
	mux := http.NewServeMux()
	health := HealthJSON
	mux.HandleFunc("/api/health", f.reply(&health))
	mux.HandleFunc("/api/businesses", f.reply(&f.contextsBody))
	mux.HandleFunc("/start", f.reply(&f.startBody))
	mux.HandleFunc("/followup", f.reply(&f.followupBody))
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

// SetStatus makes every endpoint answer with code
func (f *FakeBackendServer) SetStatus(code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = code
}

// SetStartBody replaces the /start payload
func (f *FakeBackendServer) SetStartBody(body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.startBody = body
}

// SetContextsBody replaces the /api/businesses payload
func (f *FakeBackendServer) SetContextsBody(body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contextsBody = body
}

func (f *FakeBackendServer) reply(body *string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := RecordedRequest{Path: r.URL.Path}
		if r.Body != nil {
			raw, _ := io.ReadAll(r.Body)
			if len(raw) > 0 {
				_ = json.Unmarshal(raw, &rec.Body)
			}
		}

		f.mu.Lock()
		f.requests = append(f.requests, rec)
		status := f.status
		payload := *body
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status == http.StatusOK {
			_, _ = io.WriteString(w, payload)
			return
		}
		_, _ = io.WriteString(w, `{"detail": "failure"}`)
	}
}

// Requests returns the recorded requests in order
func (f *FakeBackendServer) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RecordedRequest(nil), f.requests...)
}
