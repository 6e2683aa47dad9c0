package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stepClock struct{ now time.Time }

func (c *stepClock) Now() time.Time          { return c.now }
func (c *stepClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func failWith(err error) func(context.Context) error {
	return func(context.Context) error { return err }
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	clock := &stepClock{now: time.Unix(0, 0)}
	cb := NewCircuitBreaker(BreakerConfig{FailureThreshold: 3, CoolDown: time.Minute, Now: clock.Now})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_ = cb.Execute(ctx, failWith(ErrTimeout))
	}
	if cb.State() != StateOpen {
		t.Fatalf("State() = %v, want open", cb.State())
	}

	called := false
	err := cb.Execute(ctx, func(context.Context) error { called = true; return nil })
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Execute() error = %v, want ErrCircuitOpen", err)
	}
	if called {
		t.Error("open breaker must not call op")
	}
}

func TestCircuitBreaker_IgnoresNonTransient(t *testing.T) {
	cb := NewCircuitBreaker(BreakerConfig{FailureThreshold: 1})
	_ = cb.Execute(context.Background(), failWith(retryableErr(false)))
	if cb.State() != StateClosed {
		t.Errorf("State() = %v, want closed", cb.State())
	}
}

func TestCircuitBreaker_SuccessResetsCount(t *testing.T) {
	cb := NewCircuitBreaker(BreakerConfig{FailureThreshold: 2})
	ctx := context.Background()
	_ = cb.Execute(ctx, failWith(ErrTimeout))
	_ = cb.Execute(ctx, failWith(nil))
	_ = cb.Execute(ctx, failWith(ErrTimeout))
	if cb.State() != StateClosed {
		t.Errorf("State() = %v, want closed", cb.State())
	}
	if cb.Failures() != 1 {
		t.Errorf("Failures() = %d, want 1", cb.Failures())
	}
}

func TestCircuitBreaker_HalfOpenProbe(t *testing.T) {
	tests := []struct {
		name  string
		probe error
		want  State
	}{
		{"probe succeeds", nil, StateClosed},
		{"probe fails", ErrTimeout, StateOpen},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &stepClock{now: time.Unix(0, 0)}
			var transitions []State
			cb := NewCircuitBreaker(BreakerConfig{
				FailureThreshold: 1,
				CoolDown:         time.Minute,
				Now:              clock.Now,
				OnStateChange:    func(_, to State) { transitions = append(transitions, to) },
			})
			ctx := context.Background()

			_ = cb.Execute(ctx, failWith(ErrTimeout))
			clock.Advance(time.Minute)
			if cb.State() != StateHalfOpen {
				t.Fatalf("State() = %v, want half-open", cb.State())
			}

			_ = cb.Execute(ctx, failWith(tt.probe))
			if cb.State() != tt.want {
				t.Errorf("State() = %v, want %v", cb.State(), tt.want)
			}
			want := []State{StateOpen, StateHalfOpen, tt.want}
			if len(transitions) != len(want) {
				t.Fatalf("transitions = %v, want %v", transitions, want)
			}
			for i := range want {
				if transitions[i] != want[i] {
					t.Errorf("transition[%d] = %v, want %v", i, transitions[i], want[i])
				}
			}
		})
	}
}

func TestCircuitBreaker_SingleProbe(t *testing.T) {
	clock := &stepClock{now: time.Unix(0, 0)}
	cb := NewCircuitBreaker(BreakerConfig{FailureThreshold: 1, CoolDown: time.Second, Now: clock.Now})
	ctx := context.Background()
	_ = cb.Execute(ctx, failWith(ErrTimeout))
	clock.Advance(time.Second)

	err := cb.Execute(ctx, func(ctx context.Context) error {
		if inner := cb.Execute(ctx, failWith(nil)); !errors.Is(inner, ErrCircuitOpen) {
			t.Errorf("second probe error = %v, want ErrCircuitOpen", inner)
		}
		return nil
	})
	if err != nil {
		t.Errorf("probe error = %v", err)
	}
}

func TestCircuitBreaker_Reset(t *testing.T) {
	cb := NewCircuitBreaker(BreakerConfig{FailureThreshold: 1})
	_ = cb.Execute(context.Background(), failWith(ErrTimeout))
	cb.Reset()
	if cb.State() != StateClosed || cb.Failures() != 0 {
		t.Errorf("after Reset: state %v failures %d", cb.State(), cb.Failures())
	}
}

func TestState_String(t *testing.T) {
	for s, want := range map[State]string{
		StateClosed:   "closed",
		StateOpen:     "open",
		StateHalfOpen: "half-open",
		State(9):      "unknown",
	} {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}
