// Package errors classifies failures from external systems so callers can
// tell a transient outage from a permanent rejection.
package errors

import (
	"errors"
	"fmt"
)

// TransientError indicates a failure that may succeed if attempted again
// later (network errors, rate limits, upstream 5xx).
type TransientError struct {
	Message string
	Cause   error
}

// NewTransientError wraps cause as a transient failure.
func NewTransientError(message string, cause error) *TransientError {
	return &TransientError{Message: message, Cause: cause}
}

func (e *TransientError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *TransientError) Unwrap() error {
	return e.Cause
}

// PermanentError indicates a failure that will not go away on its own
// (invalid auth, missing channel, malformed request).
type PermanentError struct {
	Message string
	Cause   error
}

// NewPermanentError wraps cause as a permanent failure.
func NewPermanentError(message string, cause error) *PermanentError {
	return &PermanentError{Message: message, Cause: cause}
}

func (e *PermanentError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *PermanentError) Unwrap() error {
	return e.Cause
}

// IsTransientError reports whether err or any error it wraps is transient.
func IsTransientError(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// IsPermanentError reports whether err or any error it wraps is permanent.
func IsPermanentError(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

// Kind returns "transient", "permanent" or "unknown" for metric labels.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case IsTransientError(err):
		return "transient"
	case IsPermanentError(err):
		return "permanent"
	default:
		return "unknown"
	}
}
