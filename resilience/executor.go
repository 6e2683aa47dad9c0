package resilience

import (
	"context"
	"time"
)

// Executor composes a breaker, retry and per-attempt timeout around a call.
type Executor struct {
	breaker *CircuitBreaker
	retry   *Retry
	timeout *Timeout
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// NewExecutor creates an executor. With no options it calls op directly.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithCircuitBreaker adds a circuit breaker.
func WithCircuitBreaker(cb *CircuitBreaker) ExecutorOption {
	return func(e *Executor) { e.breaker = cb }
}

// WithRetry adds retry logic.
func WithRetry(r *Retry) ExecutorOption {
	return func(e *Executor) { e.retry = r }
}

// WithTimeout bounds every attempt by d.
func WithTimeout(d time.Duration) ExecutorOption {
	return func(e *Executor) { e.timeout = NewTimeout(d) }
}

// Execute runs op through the configured patterns.
//
// Order, outermost first: retry, circuit breaker, timeout. Each retry attempt
// passes through the breaker, so a breaker that opens mid-sequence stops the
// remaining attempts, and each attempt gets a fresh deadline.
func (e *Executor) Execute(ctx context.Context, op func(context.Context) error) error {
	call := op

	if e.timeout != nil {
		inner := call
		call = func(ctx context.Context) error {
			return e.timeout.Execute(ctx, inner)
		}
	}

	if e.breaker != nil {
		inner := call
		call = func(ctx context.Context) error {
			return e.breaker.Execute(ctx, inner)
		}
	}

	if e.retry != nil {
		inner := call
		call = func(ctx context.Context) error {
			return e.retry.Execute(ctx, inner)
		}
	}

	return call(ctx)
}
