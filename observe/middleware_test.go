package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestMiddleware_Run(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name      string
		level     string
		err       error
		wantLevel string
		wantMsg   string
	}{
		{"success logs at debug", "debug", nil, "debug", "operation completed"},
		{"failure logs at warn", "info", boom, "warn", "operation failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			mw := NewMiddleware(nil, NewLoggerWithWriter(tt.level, &buf))

			called := false
			err := mw.Run(context.Background(), OpMeta{Component: "draft", Operation: "save"}, func(context.Context) error {
				called = true
				return tt.err
			})
			if !called {
				t.Fatal("wrapped function not called")
			}
			if !errors.Is(err, tt.err) {
				t.Fatalf("Run() error = %v, want %v", err, tt.err)
			}

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("log line %q: %v", buf.String(), err)
			}
			if entry["level"] != tt.wantLevel || entry["msg"] != tt.wantMsg {
				t.Errorf("log entry = %v", entry)
			}
			if entry["op"] != "portal.draft.save" {
				t.Errorf("op = %v, want portal.draft.save", entry["op"])
			}
		})
	}
}

func TestMiddleware_SuccessQuietAtInfo(t *testing.T) {
	var buf bytes.Buffer
	mw := NewMiddleware(NoopTracer(), NewLoggerWithWriter("info", &buf))
	if err := mw.Run(context.Background(), OpMeta{Operation: "x"}, func(context.Context) error { return nil }); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("unexpected log output: %s", buf.String())
	}
}
