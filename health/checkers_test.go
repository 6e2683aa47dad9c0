package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonwraymond/portalcache/cache"
	"github.com/jonwraymond/portalcache/localstore"
	"github.com/jonwraymond/portalcache/remote"
	"github.com/jonwraymond/portalcache/resilience"
)

func TestRemoteChecker(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   Status
	}{
		{"ok", http.StatusOK, StatusHealthy},
		{"unauthorized", http.StatusUnauthorized, StatusDegraded},
		{"server error", http.StatusBadGateway, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/health" {
					t.Errorf("path = %q, want /health", r.URL.Path)
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"success":true}`))
			}))
			defer srv.Close()

			client, err := remote.New(srv.URL)
			if err != nil {
				t.Fatal(err)
			}
			got := NewRemoteChecker(client, "health").Check(context.Background())
			if got.Status != tt.want {
				t.Errorf("Check() = %+v, want status %v", got, tt.want)
			}
		})
	}
}

func TestRemoteChecker_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	client, err := remote.New(srv.URL, remote.WithTimeout(20*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	got := NewRemoteChecker(client, "health").Check(context.Background())
	if got.Status != StatusUnhealthy || got.Message != "remote timed out" {
		t.Errorf("Check() = %+v, want timeout", got)
	}
}

func TestRemoteChecker_OpenBreaker(t *testing.T) {
	cb := resilience.NewCircuitBreaker(resilience.BreakerConfig{FailureThreshold: 1})
	_ = cb.Execute(context.Background(), func(context.Context) error { return resilience.ErrTimeout })
	if cb.State() != resilience.StateOpen {
		t.Fatalf("breaker state = %v, want open", cb.State())
	}

	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()
	client, _ := remote.New(srv.URL)

	got := NewRemoteChecker(client, "health").WithBreaker(cb).Check(context.Background())
	if got.Status != StatusUnhealthy || !errors.Is(got.Error, resilience.ErrCircuitOpen) {
		t.Errorf("Check() = %+v, want open breaker", got)
	}
	if called {
		t.Error("probe request sent while breaker open")
	}
}

type brokenStore struct {
	localstore.Store
	writeErr error
	lose     bool
}

func (b *brokenStore) Write(ctx context.Context, key, value string) error {
	if b.writeErr != nil {
		return b.writeErr
	}
	if b.lose {
		return nil
	}
	return b.Store.Write(ctx, key, value)
}

func TestStoreChecker(t *testing.T) {
	mem := localstore.NewMemory()
	got := NewStoreChecker(mem).Check(context.Background())
	if got.Status != StatusHealthy {
		t.Errorf("Check() = %+v, want healthy", got)
	}
	if mem.Len() != 0 {
		t.Errorf("probe key left behind: %d entries", mem.Len())
	}

	writeErr := errors.New("disk full")
	got = NewStoreChecker(&brokenStore{Store: localstore.NewMemory(), writeErr: writeErr}).Check(context.Background())
	if got.Status != StatusUnhealthy || !errors.Is(got.Error, writeErr) {
		t.Errorf("Check() with failing write = %+v", got)
	}

	got = NewStoreChecker(&brokenStore{Store: localstore.NewMemory(), lose: true}).Check(context.Background())
	if got.Status != StatusUnhealthy || !errors.Is(got.Error, ErrCheckFailed) {
		t.Errorf("Check() with lost write = %+v", got)
	}
}

func TestCacheChecker(t *testing.T) {
	store := cache.NewStore[any]()
	store.Set("a", 1)
	store.Set("b", 2)

	tests := []struct {
		name      string
		softLimit int
		want      Status
	}{
		{"no limit", 0, StatusHealthy},
		{"under limit", 3, StatusHealthy},
		{"at limit", 2, StatusDegraded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewCacheChecker(store, tt.softLimit).Check(context.Background())
			if got.Status != tt.want {
				t.Errorf("Check() = %+v, want %v", got, tt.want)
			}
			if got.Details["entries"] != 2 {
				t.Errorf("entries = %v, want 2", got.Details["entries"])
			}
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if got := NewCacheChecker(store, 0).Check(ctx); got.Status != StatusUnhealthy {
		t.Errorf("Check() on cancelled ctx = %+v", got)
	}
}
