package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jonwraymond/portalcache/auth"
)

// ErrTimeout marks a call that exceeded its deadline.
var ErrTimeout = errors.New("request timeout")

// Error is a failed backend call.
type Error struct {
	Method string
	Path   string

	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int

	// Message is the backend's message when it sent one, otherwise a
	// description of the failure.
	Message string

	// Err is the underlying transport or decode error, if any.
	Err error
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("remote: %s %s: %s", e.Method, e.Path, e.Message)
	}
	return fmt.Sprintf("remote: %s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether repeating the call could succeed: network
// failures, 429 and 5xx responses. Cancellation and credential failures are
// never retryable.
func (e *Error) Retryable() bool {
	switch {
	case e.StatusCode == 0:
		return !errors.Is(e.Err, context.Canceled) && !auth.IsAuthError(e.Err)
	case e.StatusCode == http.StatusTooManyRequests:
		return true
	default:
		return e.StatusCode >= 500
	}
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var re *Error
	if errors.As(err, &re) {
		return re.StatusCode
	}
	return 0
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsTimeout reports whether err is a deadline expiry, either the client's
// own or one inherited from the caller's context.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
}
