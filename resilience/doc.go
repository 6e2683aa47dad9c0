// Package resilience bounds and repeats calls to the portal backend.
//
// Three patterns are provided and composed by Executor:
//
//   - Timeout gives each attempt its own deadline and reports expiry as
//     ErrTimeout.
//   - Retry repeats transient failures with exponential backoff.
//   - CircuitBreaker stops calling a backend after consecutive failures
//     and probes it again after a cool-down.
//
// Whether an error is transient is decided by IsTransient: timeouts and
// errors implementing Retryable that report true. The remote package's
// errors implement Retryable for network failures and 5xx responses.
//
//	exec := resilience.NewExecutor(
//	    resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{MaxAttempts: 3})),
//	    resilience.WithCircuitBreaker(resilience.NewCircuitBreaker(resilience.BreakerConfig{})),
//	    resilience.WithTimeout(10*time.Second),
//	)
//	err := exec.Execute(ctx, func(ctx context.Context) error {
//	    return callBackend(ctx)
//	})
package resilience
