package observe

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric names.
const (
	MetricCacheLookups   = "portal.cache.lookups"
	MetricRemoteRequests = "portal.remote.requests"
	MetricRemoteDuration = "portal.remote.duration_ms"
	MetricDraftFallbacks = "portal.draft.fallbacks"
)

// Metrics records portal data-layer metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordCacheLookup records a read-through lookup for a query prefix.
	RecordCacheLookup(ctx context.Context, query string, hit bool)

	// RecordRemoteCall records one backend request. status is 0 when no
	// response was received.
	RecordRemoteCall(ctx context.Context, method string, status int, duration time.Duration, err error)

	// RecordDraftFallback records a draft operation served by or mirrored to
	// the local store because the remote failed.
	RecordDraftFallback(ctx context.Context, op, reason string)
}

type metricsImpl struct {
	lookups   metric.Int64Counter
	requests  metric.Int64Counter
	duration  metric.Float64Histogram
	fallbacks metric.Int64Counter
}

// NewMetrics creates the portal instruments on meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	lookups, err := meter.Int64Counter(
		MetricCacheLookups,
		metric.WithDescription("Read-through cache lookups by result"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	requests, err := meter.Int64Counter(
		MetricRemoteRequests,
		metric.WithDescription("Backend requests by method and status"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		MetricRemoteDuration,
		metric.WithDescription("Backend request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	fallbacks, err := meter.Int64Counter(
		MetricDraftFallbacks,
		metric.WithDescription("Draft operations that fell back to the local store"),
		metric.WithUnit("{fallback}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		lookups:   lookups,
		requests:  requests,
		duration:  duration,
		fallbacks: fallbacks,
	}, nil
}

func (m *metricsImpl) RecordCacheLookup(ctx context.Context, query string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.lookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("cache.query", query),
		attribute.String("cache.result", result),
	))
}

func (m *metricsImpl) RecordRemoteCall(ctx context.Context, method string, status int, duration time.Duration, err error) {
	opt := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.status", strconv.Itoa(status)),
		attribute.Bool("error", err != nil),
	)
	m.requests.Add(ctx, 1, opt)
	m.duration.Record(ctx, float64(duration.Milliseconds()), opt)
}

func (m *metricsImpl) RecordDraftFallback(ctx context.Context, op, reason string) {
	m.fallbacks.Add(ctx, 1, metric.WithAttributes(
		attribute.String("draft.op", op),
		attribute.String("draft.reason", reason),
	))
}

type noopMetrics struct{}

// NoopMetrics returns a Metrics that records nothing.
func NoopMetrics() Metrics { return noopMetrics{} }

func (noopMetrics) RecordCacheLookup(context.Context, string, bool)                     {}
func (noopMetrics) RecordRemoteCall(context.Context, string, int, time.Duration, error) {}
func (noopMetrics) RecordDraftFallback(context.Context, string, string)                 {}
