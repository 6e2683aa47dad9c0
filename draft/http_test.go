package draft

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/jonwraymond/portalcache/localstore"
	"github.com/jonwraymond/portalcache/remote"
)

// draftServer is a minimal admission draft backend.
type draftServer struct {
	mu    sync.Mutex
	body  string
	fail  bool
	style string // "envelope", "data", "bare"
}

func (s *draftServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.URL.Path != "/"+DefaultPath {
		http.NotFound(w, r)
		return
	}
	if s.fail {
		w.WriteHeader(http.StatusBadGateway)
		return
	}
	switch r.Method {
	case http.MethodPost:
		b, _ := io.ReadAll(r.Body)
		s.body = string(b)
		s.write(w, s.body)
	case http.MethodGet:
		if s.body == "" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"success":false,"message":"No draft found"}`)
			return
		}
		s.write(w, s.body)
	case http.MethodDelete:
		s.body = ""
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *draftServer) write(w http.ResponseWriter, rec string) {
	switch s.style {
	case "data":
		_, _ = io.WriteString(w, `{"data":`+rec+`}`)
	case "bare":
		_, _ = io.WriteString(w, rec)
	default:
		_, _ = io.WriteString(w, `{"success":true,"message":"ok","data":`+rec+`}`)
	}
}

func newHTTPRemote(t *testing.T, srv *draftServer) *HTTPRemote {
	t.Helper()
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	client, err := remote.New(ts.URL)
	if err != nil {
		t.Fatal(err)
	}
	return NewHTTPRemote(client, "")
}

func TestHTTPRemote_RoundTrip(t *testing.T) {
	for _, style := range []string{"envelope", "data", "bare"} {
		t.Run(style, func(t *testing.T) {
			r := newHTTPRemote(t, &draftServer{style: style})
			ctx := context.Background()

			if _, err := r.Load(ctx); !remote.IsNotFound(err) {
				t.Fatalf("Load() on empty backend error = %v, want not found", err)
			}

			saved, err := r.Save(ctx, json.RawMessage(`{"name":"Ada"}`), 3)
			if err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			if saved.CurrentStep != 3 || string(saved.DraftData) != `{"name":"Ada"}` {
				t.Errorf("Save() = %+v", saved)
			}

			got, err := r.Load(ctx)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if got.CurrentStep != 3 {
				t.Errorf("Load().CurrentStep = %d, want 3", got.CurrentStep)
			}

			if err := r.Delete(ctx); err != nil {
				t.Errorf("Delete() error = %v", err)
			}
		})
	}
}

func TestCoordinator_OverHTTP(t *testing.T) {
	srv := &draftServer{}
	c := NewCoordinator(newHTTPRemote(t, srv), localstore.NewMemory())
	ctx := context.Background()

	if _, err := c.Save(ctx, json.RawMessage(`{"name":"Ada"}`), 2); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	srv.mu.Lock()
	srv.fail = true
	srv.mu.Unlock()

	got, ok, err := c.Get(ctx)
	if err != nil || !ok || got.CurrentStep != 2 {
		t.Fatalf("Get() with failing backend = %+v, %v, %v", got, ok, err)
	}

	c.Clear(ctx)
	if _, ok, _ := c.Local(ctx); ok {
		t.Error("Clear() left a local copy")
	}
	_, ok, err = c.Get(ctx)
	if ok || err == nil {
		t.Errorf("Get() after Clear with failing backend = %v, %v; want error", ok, err)
	}
}

func TestParseRecord(t *testing.T) {
	tests := []struct {
		name string
		in   string
		step int
	}{
		{"bare", `{"draftData":{},"currentStep":2}`, 2},
		{"nested", `{"data":{"draftData":{},"currentStep":5}}`, 5},
		{"null", `null`, 0},
		{"empty", ``, 0},
		{"draft data named data", `{"draftData":{"data":1},"currentStep":1,"data":"x"}`, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := parseRecord(json.RawMessage(tt.in))
			if err != nil {
				t.Fatalf("parseRecord() error = %v", err)
			}
			if rec.CurrentStep != tt.step {
				t.Errorf("CurrentStep = %d, want %d", rec.CurrentStep, tt.step)
			}
		})
	}
}
