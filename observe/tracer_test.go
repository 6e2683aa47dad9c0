package observe

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newRecordingTracer() (Tracer, *tracetest.SpanRecorder) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	return NewTracer(tp.Tracer("test")), recorder
}

func TestOpMeta_SpanName(t *testing.T) {
	tests := []struct {
		meta OpMeta
		want string
	}{
		{OpMeta{Component: "draft", Operation: "save"}, "portal.draft.save"},
		{OpMeta{Component: "remote", Operation: "GET"}, "portal.remote.GET"},
		{OpMeta{Operation: "bootstrap"}, "portal.bootstrap"},
	}
	for _, tt := range tests {
		if got := tt.meta.SpanName(); got != tt.want {
			t.Errorf("SpanName() = %q, want %q", got, tt.want)
		}
	}
}

func TestTracer_RecordsAttributesAndStatus(t *testing.T) {
	tracer, recorder := newRecordingTracer()

	meta := OpMeta{
		Component: "remote",
		Operation: "GET",
		Attrs:     []attribute.KeyValue{attribute.String("http.path", "/routines")},
	}
	_, span := tracer.StartSpan(context.Background(), meta)
	tracer.EndSpan(span, errors.New("bad gateway"))

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	s := spans[0]
	if s.Name() != "portal.remote.GET" {
		t.Errorf("span name = %q", s.Name())
	}
	if s.Status().Code != codes.Error {
		t.Errorf("status = %v, want Error", s.Status().Code)
	}

	var sawPath bool
	for _, kv := range s.Attributes() {
		if kv.Key == "http.path" && kv.Value.AsString() == "/routines" {
			sawPath = true
		}
	}
	if !sawPath {
		t.Errorf("http.path attribute missing: %v", s.Attributes())
	}
}

func TestTracer_OkStatus(t *testing.T) {
	tracer, recorder := newRecordingTracer()
	_, span := tracer.StartSpan(context.Background(), OpMeta{Component: "draft", Operation: "get"})
	tracer.EndSpan(span, nil)

	if got := recorder.Ended()[0].Status().Code; got != codes.Ok {
		t.Errorf("status = %v, want Ok", got)
	}
}

func TestMiddleware_RunWithTracer(t *testing.T) {
	tracer, recorder := newRecordingTracer()
	var buf bytes.Buffer
	mw := NewMiddleware(tracer, NewLoggerWithWriter("debug", &buf))

	wantErr := errors.New("remote down")
	err := mw.Run(context.Background(), OpMeta{Component: "draft", Operation: "save"}, func(ctx context.Context) error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Run() = %v, want %v", err, wantErr)
	}
	if n := len(recorder.Ended()); n != 1 {
		t.Errorf("got %d spans, want 1", n)
	}

	entries := decodeLines(t, &buf)
	if len(entries) != 1 || entries[0]["level"] != "warn" {
		t.Fatalf("expected one warn entry, got %v", entries)
	}
	if entries[0]["op"] != "portal.draft.save" {
		t.Errorf("op = %v", entries[0]["op"])
	}
}

func TestMiddleware_NilDependencies(t *testing.T) {
	mw := NewMiddleware(nil, nil)
	if err := mw.Run(context.Background(), OpMeta{Operation: "noop"}, func(context.Context) error { return nil }); err != nil {
		t.Errorf("Run() = %v, want nil", err)
	}
}
