package internal

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// DefaultTimeout bounds one exchange with the backend
const DefaultTimeout = 10 * time.Minute

// Backend is the remote question-answering service
type Backend interface {
	Start(ctx context.Context, prompt, contextID string) (StartResult, error)
	Followup(ctx context.Context, conversationID, prompt, contextID string) (FollowupResult, error)
}

// ContextLister lists the selectable business contexts
type ContextLister interface {
	ListContexts(ctx context.Context) ([]BusinessContext, error)
}

// SessionController runs the Idle/AwaitingResponse state machine of one
// conversation. At most one exchange is in flight at a time.
type SessionController struct {
	backend    Backend
	classifier *Classifier
	timeout    time.Duration

	mu          sync.Mutex
	state       ConversationState
	contexts    []BusinessContext
	contextID   string
	epoch       uint64
	initialized bool
}

// ControllerOption configures a SessionController
type ControllerOption func(*SessionController)

// WithTimeout sets the per-exchange deadline. Zero disables it.
func WithTimeout(d time.Duration) ControllerOption {
	return func(s *SessionController) {
		s.timeout = d
	}
}

// WithContext preselects a business context
func WithContext(id string) ControllerOption {
	return func(s *SessionController) {
		s.contextID = id
	}
}

// NewSessionController creates a controller in the Idle state
func NewSessionController(backend Backend, opts ...ControllerOption) (*SessionController, error) {
	if backend == nil {
		return nil, fmt.Errorf("session: backend must not be nil")
	}
	s := &SessionController{
		backend:    backend,
		classifier: NewClassifier(),
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Init loads the context set once. A listing failure leaves the set empty
// and does not block the session. The first context is selected when none
// was preselected.
func (s *SessionController) Init(ctx context.Context, lister ContextLister) {
	s.mu.Lock()
	if s.initialized {
		s.mu.Unlock()
		return
	}
	s.initialized = true
	s.mu.Unlock()

	var contexts []BusinessContext
	if lister != nil {
		var err error
		contexts, err = lister.ListContexts(ctx)
		if err != nil {
			LogWarn("Failed to load contexts: %v", err)
			contexts = nil
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.contexts = contexts
	if s.contextID == "" && len(contexts) > 0 {
		s.contextID = contexts[0].ID
	}
	LogDebug("Loaded %d context(s), selected %q", len(contexts), s.contextID)
}

// Contexts returns the selectable contexts
func (s *SessionController) Contexts() []BusinessContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]BusinessContext(nil), s.contexts...)
}

// SelectedContext returns the active context. Contexts unknown to the
// listing are returned with only their ID set.
func (s *SessionController) SelectedContext() BusinessContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.contexts {
		if c.ID == s.contextID {
			return c
		}
	}
	return BusinessContext{ID: s.contextID}
}

// Snapshot returns a copy of the conversation state
func (s *SessionController) Snapshot() ConversationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Pending reports whether an exchange is in flight
func (s *SessionController) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Pending
}

// Submit runs one exchange and blocks until it finishes. It returns false
// without doing anything when the prompt is blank or another exchange is
// in flight.
func (s *SessionController) Submit(ctx context.Context, prompt string) bool {
	if strings.TrimSpace(prompt) == "" {
		return false
	}
	return s.submit(ctx, prompt) == nil
}

// SubmitSuggestion resubmits the text of the suggestion at transcript
// index. It returns ErrNoSuggestion when the index holds no suggestion and
// ErrBusy when another exchange is in flight.
func (s *SessionController) SubmitSuggestion(ctx context.Context, index int) error {
	s.mu.Lock()
	if index < 0 || index >= len(s.state.Transcript) {
		s.mu.Unlock()
		return ErrNoSuggestion
	}
	msg := s.state.Transcript[index]
	s.mu.Unlock()

	if msg.Kind != KindNarrative || !msg.IsSuggestion {
		return ErrNoSuggestion
	}
	return s.submit(ctx, msg.Text)
}

func (s *SessionController) submit(ctx context.Context, prompt string) error {
	s.mu.Lock()
	if s.state.Pending {
		s.mu.Unlock()
		LogDebug("Ignoring prompt while an exchange is in flight")
		return ErrBusy
	}
	s.state = beginExchange(s.state, prompt)
	epoch := s.epoch
	conversationID := s.state.ConversationID
	contextID := s.contextID
	s.mu.Unlock()

	adoptedID, fragments, err := s.exchange(ctx, conversationID, prompt, contextID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		LogDebug("Discarding reply for a previous context")
		s.state.Pending = false
		return nil
	}
	if err != nil {
		failure := ClassifyFailure(err)
		LogWarn("Exchange failed (%s): %v", failure, err)
		s.state = failExchange(s.state, failure)
		return nil
	}
	s.state = completeExchange(s.state, adoptedID, s.classifier.Classify(fragments))
	return nil
}

// SwitchContext selects another business context and starts over with an
// empty transcript and no conversation id.
func (s *SessionController) SwitchContext(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("session: context id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.contexts) > 0 && !containsContext(s.contexts, id) {
		return fmt.Errorf("session: unknown context %q", id)
	}
	s.contextID = id
	s.state = resetForContext(s.state)
	s.epoch++
	LogDebug("Switched to context %q", id)
	return nil
}

// exchange issues start or followup. A panicking backend is reported as
// an ordinary failure so the session always returns to Idle.
func (s *SessionController) exchange(ctx context.Context, conversationID, prompt, contextID string) (adoptedID string, fragments []RawFragment, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("session: backend panic: %v", r)
		}
	}()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if conversationID == "" {
		res, err := s.backend.Start(ctx, prompt, contextID)
		if err != nil {
			return "", nil, err
		}
		return res.ConversationID, res.Fragments, nil
	}

	res, err := s.backend.Followup(ctx, conversationID, prompt, contextID)
	if err != nil {
		return "", nil, err
	}
	return "", res.Fragments, nil
}

func containsContext(contexts []BusinessContext, id string) bool {
	for _, c := range contexts {
		if c.ID == id {
			return true
		}
	}
	return false
}

// beginExchange appends the prompt and enters AwaitingResponse
func beginExchange(s ConversationState, prompt string) ConversationState {
	s.Transcript = appendMessages(s.Transcript, NewUserPrompt(prompt))
	s.Pending = true
	return s
}

// completeExchange adopts the conversation id of a start reply and appends
// the classified messages. An established id is never replaced.
func completeExchange(s ConversationState, conversationID string, messages []DisplayMessage) ConversationState {
	if s.ConversationID == "" && conversationID != "" {
		s.ConversationID = conversationID
	}
	s.Transcript = appendMessages(s.Transcript, messages...)
	s.Pending = false
	return s
}

// failExchange appends the failure notice; the conversation id is kept
func failExchange(s ConversationState, failure FailureClass) ConversationState {
	s.Transcript = appendMessages(s.Transcript, NewNarrative(failure.Notice(), false))
	s.Pending = false
	return s
}

// resetForContext clears the conversation. Pending is kept so an exchange
// still in flight for the old context keeps the session busy until it ends.
func resetForContext(s ConversationState) ConversationState {
	return ConversationState{Pending: s.Pending}
}

func appendMessages(transcript []DisplayMessage, msgs ...DisplayMessage) []DisplayMessage {
	out := make([]DisplayMessage, 0, len(transcript)+len(msgs))
	out = append(out, transcript...)
	return append(out, msgs...)
}
