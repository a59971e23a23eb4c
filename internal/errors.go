package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrBusy is returned when a prompt arrives while an exchange is in flight
	ErrBusy = errors.New("an exchange is already in progress")
	// ErrNoSuggestion is returned when a transcript index holds no suggestion
	ErrNoSuggestion = errors.New("no suggestion at that index")
)

// BackendError represents a failed call to the analytics backend
type BackendError struct {
	Op       string // "start", "followup", "contexts", "health"
	Endpoint string
	Err      error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend error: %s %s: %v", e.Op, e.Endpoint, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// ParseError represents errors decoding data
type ParseError struct {
	Source string // "backend", "config"
	Key    string // endpoint or file path
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error [%s] %s: %v", e.Source, e.Key, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ConfigError represents an invalid configuration value
type ConfigError struct {
	Key string
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error [%s]: %v", e.Key, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// FailureClass is how a failed exchange is reported to the user
type FailureClass int

const (
	FailureUnreachable FailureClass = iota
	FailureTimeout
)

const (
	timeoutNotice     = "⏳ Still processing your query. Please try again shortly."
	unreachableNotice = "⚠️ Unable to reach the analytics backend."
)

func (f FailureClass) String() string {
	if f == FailureTimeout {
		return "timeout"
	}
	return "unreachable"
}

// Notice returns the transcript text for the failure
func (f FailureClass) Notice() string {
	if f == FailureTimeout {
		return timeoutNotice
	}
	return unreachableNotice
}

// ClassifyFailure maps an exchange error to a FailureClass. Deadline and
// network timeouts are Timeout; everything else is Unreachable.
func ClassifyFailure(err error) FailureClass {
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTimeout
	}
	return FailureUnreachable
}
