// Package completion defines the LLM completion backend used by the lookups
// and provides OpenAI, Anthropic, and offline implementations.
package completion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Backend answers a single system+user prompt pair with raw text.
type Backend interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, opts Options) (string, error)
}

// Options tunes a single completion request.
type Options struct {
	Temperature float64
	// JSONObject asks the backend to constrain the reply to a JSON object.
	JSONObject bool
	// MaxTokens caps the reply length. Zero uses the backend default.
	MaxTokens int
}

// BackendError is returned for transport, auth, rate-limit, and server-side
// failures of a completion call.
type BackendError struct {
	Provider string
	Status   int // 0 when no HTTP response was received
	Message  string
	Err      error
}

func (e *BackendError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Provider, e.Message, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *BackendError) Unwrap() error { return e.Err }

// newBackendError builds a BackendError with a readable message for the
// status classes callers care about.
func newBackendError(provider string, status int, err error) *BackendError {
	return &BackendError{
		Provider: provider,
		Status:   status,
		Message:  statusMessage(status, err),
		Err:      err,
	}
}

func statusMessage(status int, err error) string {
	switch {
	case status == http.StatusUnauthorized:
		return "invalid API key"
	case status == http.StatusTooManyRequests:
		return "rate limit exceeded"
	case status >= http.StatusInternalServerError:
		return "server error"
	case err != nil:
		return err.Error()
	default:
		return http.StatusText(status)
	}
}

// StatusOf returns the HTTP status carried by a BackendError in err's chain,
// or 0 if there is none.
func StatusOf(err error) int {
	var be *BackendError
	if errors.As(err, &be) {
		return be.Status
	}
	return 0
}
