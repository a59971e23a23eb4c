// Package genie is an HTTP client for the analytics question-answering
// backend.
package genie

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/iksnae/jarvis/internal"
)

const (
	pathHealth   = "/api/health"
	pathContexts = "/api/businesses"
	pathStart    = "/start"
	pathFollowup = "/followup"

	maxErrorBody    = 4096
	maxResponseBody = 32 << 20

	correlationHeader = "X-Correlation-Id"
)

type startRequest struct {
	Prompt   string `json:"prompt"`
	Business string `json:"business"`
}

type followupRequest struct {
	ConversationID string `json:"conversation_id"`
	Prompt         string `json:"prompt"`
	Business       string `json:"business"`
}

type healthResponse struct {
	Message string `json:"message"`
}

// Getter resolves secrets such as the backend token
type Getter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// HTTPStatusError captures non-2xx backend responses
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("genie: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client talks to the backend over JSON/HTTP. It implements
// internal.Backend and internal.ContextLister.
type Client struct {
	baseURL    string
	httpClient *http.Client
	newID      func() string

	getter     Getter
	tokenParam string

	tokenMu sync.Mutex
	token   string
}

type Option func(*Client)

// WithHTTPClient replaces the default HTTP client. The client should not
// set its own Timeout; exchanges are bounded by the caller's context.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithToken sends a static bearer token
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// WithTokenParameter resolves the bearer token from a parameter store on
// first use. A failed lookup is retried on the next call. A static token
// set with WithToken takes precedence.
func WithTokenParameter(getter Getter, name string) Option {
	return func(c *Client) {
		c.getter = getter
		c.tokenParam = strings.TrimSpace(name)
	}
}

// WithIDGenerator overrides correlation id generation
func WithIDGenerator(fn func() string) Option {
	return func(c *Client) {
		c.newID = fn
	}
}

// New creates a Client for the backend at baseURL
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("genie: base url must not be empty")
	}
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Start begins a new conversation in contextID
func (c *Client) Start(ctx context.Context, prompt, contextID string) (internal.StartResult, error) {
	var out internal.StartResult
	err := c.doJSON(ctx, "start", http.MethodPost, pathStart, startRequest{
		Prompt:   prompt,
		Business: contextID,
	}, &out)
	if err != nil {
		return internal.StartResult{}, err
	}
	return out, nil
}

// Followup sends a message in an existing conversation
func (c *Client) Followup(ctx context.Context, conversationID, prompt, contextID string) (internal.FollowupResult, error) {
	if conversationID == "" {
		return internal.FollowupResult{}, errors.New("genie: conversation id must not be empty")
	}
	var out internal.FollowupResult
	err := c.doJSON(ctx, "followup", http.MethodPost, pathFollowup, followupRequest{
		ConversationID: conversationID,
		Prompt:         prompt,
		Business:       contextID,
	}, &out)
	if err != nil {
		return internal.FollowupResult{}, err
	}
	return out, nil
}

// ListContexts returns the selectable business contexts
func (c *Client) ListContexts(ctx context.Context) ([]internal.BusinessContext, error) {
	var out []internal.BusinessContext
	if err := c.doJSON(ctx, "contexts", http.MethodGet, pathContexts, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Health returns the backend's health message
func (c *Client) Health(ctx context.Context) (string, error) {
	var out healthResponse
	if err := c.doJSON(ctx, "health", http.MethodGet, pathHealth, nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) resolveToken(ctx context.Context) (string, error) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()
	if c.token != "" || c.getter == nil || c.tokenParam == "" {
		return c.token, nil
	}
	raw, err := c.getter.GetParameter(ctx, c.tokenParam)
	if err != nil {
		return "", fmt.Errorf("genie: fetch token: %w", err)
	}
	c.token = strings.TrimSpace(raw)
	return c.token, nil
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, in, out any) error {
	url := c.baseURL + path

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("genie: marshal %s request: %w", op, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("genie: create %s request: %w", op, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(correlationHeader, c.newID())

	token, err := c.resolveToken(ctx)
	if err != nil {
		return &internal.BackendError{Op: op, Endpoint: path, Err: err}
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	internal.LogDebug("%s %s (%s=%s)", method, url, correlationHeader, req.Header.Get(correlationHeader))
	res, err := c.httpClient.Do(req)
	if err != nil {
		return &internal.BackendError{Op: op, Endpoint: path, Err: err}
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return &internal.BackendError{Op: op, Endpoint: path, Err: &HTTPStatusError{
			StatusCode: res.StatusCode,
			URL:        url,
			Body:       string(buf),
		}}
	}

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBody))
	if err != nil {
		return &internal.BackendError{Op: op, Endpoint: path, Err: fmt.Errorf("read response body: %w", err)}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &internal.ParseError{Source: "backend", Key: path, Err: err}
	}
	return nil
}
