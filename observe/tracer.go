package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// OpMeta describes a traced data-layer operation.
type OpMeta struct {
	Component string // cache, remote, draft, routine
	Operation string // e.g. save, get, GET
	Attrs     []attribute.KeyValue
}

// SpanName returns the deterministic span name: portal.<component>.<operation>.
func (m OpMeta) SpanName() string {
	if m.Component == "" {
		return "portal." + m.Operation
	}
	return "portal." + m.Component + "." + m.Operation
}

// Tracer wraps OpenTelemetry tracing with portal span conventions.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a span for the operation.
	StartSpan(ctx context.Context, meta OpMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording err if non-nil.
	EndSpan(span trace.Span, err error)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer wraps an OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// NoopTracer returns a Tracer whose spans record nothing.
func NoopTracer() Tracer {
	return &tracerImpl{tracer: tracenoop.NewTracerProvider().Tracer("noop")}
}

func (t *tracerImpl) StartSpan(ctx context.Context, meta OpMeta) (context.Context, trace.Span) {
	attrs := make([]attribute.KeyValue, 0, len(meta.Attrs)+2)
	attrs = append(attrs,
		attribute.String("portal.component", meta.Component),
		attribute.String("portal.operation", meta.Operation),
	)
	attrs = append(attrs, meta.Attrs...)

	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
