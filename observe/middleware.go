package observe

import (
	"context"
	"time"
)

// OpFunc is an instrumented unit of work.
type OpFunc func(ctx context.Context) error

// Middleware wraps operations with a span and a completion log line.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Errors: errors from the wrapped function are recorded and returned unchanged.
type Middleware struct {
	tracer Tracer
	logger Logger
}

// NewMiddleware creates a Middleware. Nil arguments fall back to no-ops.
func NewMiddleware(tracer Tracer, logger Logger) *Middleware {
	if tracer == nil {
		tracer = NoopTracer()
	}
	if logger == nil {
		logger = NoopLogger()
	}
	return &Middleware{tracer: tracer, logger: logger}
}

// Run executes fn inside a span named after meta.
func (m *Middleware) Run(ctx context.Context, meta OpMeta, fn OpFunc) error {
	ctx, span := m.tracer.StartSpan(ctx, meta)
	start := time.Now()

	err := fn(ctx)

	duration := time.Since(start)
	m.tracer.EndSpan(span, err)

	fields := []Field{
		F("op", meta.SpanName()),
		F("duration_ms", float64(duration.Milliseconds())),
	}
	if err != nil {
		m.logger.Warn(ctx, "operation failed", append(fields, Err(err))...)
	} else {
		m.logger.Debug(ctx, "operation completed", fields...)
	}
	return err
}
