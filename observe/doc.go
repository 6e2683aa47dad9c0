// Package observe provides logging, metrics and tracing for the portal data
// layer.
//
// It is a pure instrumentation library. The cache, remote, draft and routine
// packages accept a Logger, Metrics and Tracer through their options and fall
// back to no-op implementations, so nothing here is required to use them.
//
// NewObserver wires OpenTelemetry providers (otlp, prometheus or stdout
// exporters) and a JSON structured logger from a single Config.
package observe
