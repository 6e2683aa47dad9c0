package resilience

import (
	"context"
	"errors"
)

// Sentinel errors for resilience operations.
var (
	// ErrCircuitOpen is returned when the breaker rejects a call.
	ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

	// ErrTimeout is returned when an operation exceeds its own deadline.
	// A deadline inherited from the caller's context is reported as
	// context.DeadlineExceeded instead.
	ErrTimeout = errors.New("resilience: operation timed out")
)

// Retryable is implemented by errors that know whether repeating the
// operation could succeed.
type Retryable interface {
	Retryable() bool
}

// IsTransient reports whether err is worth retrying. Timeouts are, as are
// errors that declare themselves Retryable. Cancellation and an open breaker
// are not.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, ErrCircuitOpen) {
		return false
	}
	if errors.Is(err, ErrTimeout) {
		return true
	}
	var r Retryable
	if errors.As(err, &r) {
		return r.Retryable()
	}
	return false
}
