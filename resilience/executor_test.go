package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestExecutor_NoPatterns(t *testing.T) {
	boom := errors.New("boom")
	err := NewExecutor().Execute(context.Background(), failWith(boom))
	if err != boom {
		t.Errorf("Execute() error = %v, want %v", err, boom)
	}
}

func TestExecutor_RetriesTimeouts(t *testing.T) {
	r := NewRetry(RetryConfig{MaxAttempts: 3})
	r.sleep = noSleep
	exec := NewExecutor(WithRetry(r), WithTimeout(5*time.Millisecond))

	attempts := 0
	err := exec.Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			<-ctx.Done()
			return ctx.Err()
		}
		return nil
	})
	if err != nil {
		t.Errorf("Execute() error = %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestExecutor_BreakerStopsRetries(t *testing.T) {
	r := NewRetry(RetryConfig{MaxAttempts: 5, RetryIf: func(err error) bool { return err != nil }})
	r.sleep = noSleep
	cb := NewCircuitBreaker(BreakerConfig{FailureThreshold: 2, CoolDown: time.Hour})
	exec := NewExecutor(WithRetry(r), WithCircuitBreaker(cb))

	attempts := 0
	err := exec.Execute(context.Background(), func(context.Context) error {
		attempts++
		return ErrTimeout
	})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Execute() error = %v, want ErrCircuitOpen", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}
