// Package httpapi exposes one conversation session over JSON/HTTP so a web
// front end can render it.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/iksnae/jarvis/internal"
	"github.com/iksnae/jarvis/internal/export"
)

// Session is the part of *internal.SessionController the server drives
type Session interface {
	Submit(ctx context.Context, prompt string) bool
	SubmitSuggestion(ctx context.Context, index int) error
	SwitchContext(id string) error
	Snapshot() internal.ConversationState
	Contexts() []internal.BusinessContext
	SelectedContext() internal.BusinessContext
}

// Options configure the server
type Options struct {
	AllowedOrigins []string
}

type Server struct {
	router  *chi.Mux
	session Session
}

type promptRequest struct {
	Prompt string `json:"prompt"`
}

type contextRequest struct {
	ID string `json:"id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type messageView struct {
	Index int `json:"index"`
	internal.DisplayMessage
	FormattedRows [][]string `json:"formatted_rows,omitempty"`
}

type sessionView struct {
	ConversationID string                   `json:"conversation_id,omitempty"`
	Pending        bool                     `json:"pending"`
	Context        internal.BusinessContext `json:"context"`
	Messages       []messageView            `json:"messages"`
}

// NewServer creates a Server for session
func NewServer(session Session, opts Options) *Server {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Correlation-Id"},
		MaxAge:         300,
	}))

	s := &Server{router: r, session: session}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)
	s.router.Get("/api/contexts", s.handleContexts)
	s.router.Get("/api/session", s.handleSession)
	s.router.Post("/api/session/prompt", s.handlePrompt)
	s.router.Post("/api/session/suggestions/{index}", s.handleSuggestion)
	s.router.Put("/api/session/context", s.handleSwitchContext)
	s.router.Get("/api/session/messages/{index}/csv", s.handleCSV)
}

func (s *Server) Router() http.Handler { return s.router }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "Jarvis client running"})
}

func (s *Server) handleContexts(w http.ResponseWriter, r *http.Request) {
	contexts := s.session.Contexts()
	if contexts == nil {
		contexts = []internal.BusinessContext{}
	}
	s.writeJSON(w, http.StatusOK, contexts)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.view())
}

// handlePrompt runs the exchange synchronously and replies with the
// updated session.
func (s *Server) handlePrompt(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		s.writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}
	// an issued exchange is not cancelled when the client goes away
	if !s.session.Submit(context.WithoutCancel(r.Context()), req.Prompt) {
		s.writeError(w, http.StatusConflict, "an exchange is already in progress")
		return
	}
	s.writeJSON(w, http.StatusOK, s.view())
}

func (s *Server) handleSuggestion(w http.ResponseWriter, r *http.Request) {
	index, ok := s.indexParam(w, r)
	if !ok {
		return
	}
	err := s.session.SubmitSuggestion(context.WithoutCancel(r.Context()), index)
	switch {
	case errors.Is(err, internal.ErrBusy):
		s.writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		s.writeError(w, http.StatusNotFound, "no suggestion at index "+strconv.Itoa(index))
		return
	}
	s.writeJSON(w, http.StatusOK, s.view())
}

func (s *Server) handleSwitchContext(w http.ResponseWriter, r *http.Request) {
	var req contextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := s.session.SwitchContext(req.ID); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, s.view())
}

func (s *Server) handleCSV(w http.ResponseWriter, r *http.Request) {
	index, ok := s.indexParam(w, r)
	if !ok {
		return
	}
	transcript := s.session.Snapshot().Transcript
	if index >= len(transcript) {
		s.writeError(w, http.StatusNotFound, "no message at index "+strconv.Itoa(index))
		return
	}
	data, err := export.TableCSV(transcript[index])
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="table_`+strconv.Itoa(index)+`.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) indexParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		s.writeError(w, http.StatusBadRequest, "index must be a non-negative integer")
		return 0, false
	}
	return index, true
}

func (s *Server) view() sessionView {
	state := s.session.Snapshot()
	messages := make([]messageView, len(state.Transcript))
	for i, msg := range state.Transcript {
		mv := messageView{Index: i, DisplayMessage: msg}
		if msg.IsTabular() {
			mv.FormattedRows = internal.FormattedRows(msg, internal.MaxDisplayRows)
		}
		messages[i] = mv
	}
	return sessionView{
		ConversationID: state.ConversationID,
		Pending:        state.Pending,
		Context:        s.session.SelectedContext(),
		Messages:       messages,
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		internal.LogWarn("Failed to write response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	s.writeJSON(w, code, errorResponse{Error: msg})
}
