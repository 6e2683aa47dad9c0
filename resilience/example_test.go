package resilience_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonwraymond/portalcache/resilience"
)

func ExampleTimeout_Execute() {
	t := resilience.NewTimeout(10 * time.Millisecond)
	err := t.Execute(context.Background(), func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	fmt.Println(errors.Is(err, resilience.ErrTimeout))
	// Output:
	// true
}

func ExampleCircuitBreaker() {
	cb := resilience.NewCircuitBreaker(resilience.BreakerConfig{FailureThreshold: 2})
	ctx := context.Background()
	fail := func(context.Context) error { return resilience.ErrTimeout }

	_ = cb.Execute(ctx, fail)
	fmt.Println(cb.State())
	_ = cb.Execute(ctx, fail)
	fmt.Println(cb.State())
	// Output:
	// closed
	// open
}
