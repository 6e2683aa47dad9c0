package resilience

import (
	"context"
	"errors"
	"time"
)

// DefaultTimeout bounds a single backend call when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// Timeout bounds each operation with its own deadline.
type Timeout struct {
	d time.Duration
}

// NewTimeout creates a timeout wrapper. Non-positive durations use
// DefaultTimeout.
func NewTimeout(d time.Duration) *Timeout {
	if d <= 0 {
		d = DefaultTimeout
	}
	return &Timeout{d: d}
}

// Duration returns the configured per-operation deadline.
func (t *Timeout) Duration() time.Duration {
	return t.d
}

// Execute runs op with a derived context that expires after the configured
// duration. op must honour ctx; Execute waits for it to return.
//
// When the derived deadline fires first, the result is ErrTimeout joined with
// whatever op returned, so errors.Is matches both. When the parent context
// ends first its error is returned unchanged.
func (t *Timeout) Execute(ctx context.Context, op func(context.Context) error) error {
	opCtx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()

	err := op(opCtx)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return err
	}
	if errors.Is(opCtx.Err(), context.DeadlineExceeded) {
		return errors.Join(ErrTimeout, err)
	}
	return err
}
