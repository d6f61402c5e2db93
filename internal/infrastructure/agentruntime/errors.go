package agentruntime

import (
	"context"
	"errors"
	"net/http"
)

var (
	// ErrPromptBlocked is returned when the backend refuses a prompt on
	// safety grounds.
	ErrPromptBlocked = errors.New("prompt blocked")

	// ErrInvalidRequest marks a request the runtime could not encode for the backend.
	ErrInvalidRequest = errors.New("invalid model request")
)

// ModelError is a backend rejection carrying an HTTP status code.
type ModelError struct {
	Code   int
	Status string
	Err    error
}

func (e *ModelError) Error() string {
	return e.Err.Error()
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// IsUpstreamFailure reports whether err points at an unhealthy backend
// rather than at the request that triggered it. Only upstream failures
// count towards the model circuit breaker: 5xx and 429 responses, and
// transport errors. Client errors, blocked prompts and run cancellation
// belong to a single event.
func IsUpstreamFailure(err error) bool {
	switch {
	case err == nil,
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, ErrPromptBlocked),
		errors.Is(err, ErrInvalidRequest):
		return false
	}

	var modelErr *ModelError
	if errors.As(err, &modelErr) && modelErr.Code > 0 {
		return modelErr.Code >= http.StatusInternalServerError || modelErr.Code == http.StatusTooManyRequests
	}
	return true
}
