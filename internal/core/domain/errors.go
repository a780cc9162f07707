package domain

import (
	"errors"
	"fmt"
)

var ErrUserNotFound = errors.New("user not found")
var ErrBadPassword = errors.New("incorrect password")
var ErrTooManyAttempts = errors.New("too many failed login attempts")
var ErrNotAuthenticated = errors.New("not authenticated")

// ErrMissingAPIKey is returned before any network attempt when the
// generation service API key is not configured.
var ErrMissingAPIKey = errors.New("generation api key is not configured")

// ErrConnection reports a transport-level failure before any HTTP status
// was obtained. It is terminal — the client never retries it.
var ErrConnection = errors.New("connection error")

// HTTPStatusError reports a non-2xx reply from the generation service.
// Any 4xx/5xx status is terminal — the client never retries it.
type HTTPStatusError struct {
	Status int
	Body   string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("generation service returned HTTP %d: %s", e.Status, e.Body)
}

// ExhaustedError wraps the last retryable failure once the attempt budget
// has been spent.
type ExhaustedError struct {
	Attempts int
	Cause    error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("generation failed after %d attempts: %v", e.Attempts, e.Cause)
}

func (e *ExhaustedError) Unwrap() error { return e.Cause }
