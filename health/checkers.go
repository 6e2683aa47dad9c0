package health

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/jonwraymond/portalcache/localstore"
	"github.com/jonwraymond/portalcache/remote"
	"github.com/jonwraymond/portalcache/resilience"
)

// ErrCheckFailed marks an unhealthy Result that has no underlying error of
// its own, such as a local store that read back the wrong value.
var ErrCheckFailed = errors.New("health: component answered incorrectly")

// RemoteChecker probes the portal API with a GET on a fixed path.
//
// A 2xx answer is healthy. A 4xx answer means the API is reachable but refuses
// the probe (typically an expired session) and is reported degraded. Server
// errors, timeouts and transport failures are unhealthy.
type RemoteChecker struct {
	accessor remote.Accessor
	path     string
	breaker  *resilience.CircuitBreaker
}

// NewRemoteChecker creates a checker that GETs path through accessor.
func NewRemoteChecker(accessor remote.Accessor, path string) *RemoteChecker {
	return &RemoteChecker{accessor: accessor, path: path}
}

// WithBreaker makes the checker report the breaker's state without issuing a
// request while the breaker is open.
func (c *RemoteChecker) WithBreaker(cb *resilience.CircuitBreaker) *RemoteChecker {
	c.breaker = cb
	return c
}

// Name returns "remote".
func (c *RemoteChecker) Name() string {
	return "remote"
}

// Check performs the probe.
func (c *RemoteChecker) Check(ctx context.Context) Result {
	details := map[string]any{"path": c.path}
	if c.breaker != nil {
		state := c.breaker.State()
		details["breaker"] = state.String()
		if state == resilience.StateOpen {
			return Unhealthy("circuit breaker open", resilience.ErrCircuitOpen).WithDetails(details)
		}
	}

	err := c.accessor.Get(ctx, c.path, nil)
	if err == nil {
		return Healthy("remote reachable").WithDetails(details)
	}

	status := remote.StatusCode(err)
	if status != 0 {
		details["status_code"] = status
	}
	switch {
	case remote.IsTimeout(err):
		return Unhealthy("remote timed out", err).WithDetails(details)
	case status >= http.StatusBadRequest && status < http.StatusInternalServerError:
		return Degraded(fmt.Sprintf("remote refused probe: %d", status)).WithDetails(details)
	default:
		return Unhealthy("remote unavailable", err).WithDetails(details)
	}
}

// ProbeKey is the key StoreChecker writes and removes.
const ProbeKey = "health_probe"

// StoreChecker round-trips a probe value through a local store.
type StoreChecker struct {
	store localstore.Store
	now   func() time.Time
}

// NewStoreChecker creates a checker for store.
func NewStoreChecker(store localstore.Store) *StoreChecker {
	return &StoreChecker{store: store, now: time.Now}
}

// Name returns "localstore".
func (c *StoreChecker) Name() string {
	return "localstore"
}

// Check writes, reads back and removes ProbeKey.
func (c *StoreChecker) Check(ctx context.Context) Result {
	want := strconv.FormatInt(c.now().UnixNano(), 10)
	if err := c.store.Write(ctx, ProbeKey, want); err != nil {
		return Unhealthy("local store write failed", err)
	}
	defer func() { _ = c.store.Remove(context.WithoutCancel(ctx), ProbeKey) }()

	got, ok, err := c.store.Read(ctx, ProbeKey)
	if err != nil {
		return Unhealthy("local store read failed", err)
	}
	if !ok || got != want {
		return Unhealthy("local store lost probe value", ErrCheckFailed)
	}
	return Healthy("local store writable")
}

// Sizer is implemented by cache stores.
type Sizer interface {
	Len() int
}

// CacheChecker reports the number of cached entries and turns degraded once
// the count reaches a soft limit. The cache has no size bound of its own, so
// a count that keeps growing usually means keys are built from unsanitized
// input.
type CacheChecker struct {
	cache     Sizer
	softLimit int
}

// NewCacheChecker creates a checker for cache. A softLimit of zero or less
// disables the limit.
func NewCacheChecker(cache Sizer, softLimit int) *CacheChecker {
	return &CacheChecker{cache: cache, softLimit: softLimit}
}

// Name returns "cache".
func (c *CacheChecker) Name() string {
	return "cache"
}

// Check reports the current entry count.
func (c *CacheChecker) Check(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return Unhealthy("context cancelled", err)
	}

	size := c.cache.Len()
	details := map[string]any{"entries": size}
	if c.softLimit > 0 {
		details["soft_limit"] = c.softLimit
		if size >= c.softLimit {
			return Degraded(fmt.Sprintf("cache holds %d entries", size)).WithDetails(details)
		}
	}
	return Healthy(fmt.Sprintf("cache holds %d entries", size)).WithDetails(details)
}

var (
	_ Checker = (*RemoteChecker)(nil)
	_ Checker = (*StoreChecker)(nil)
	_ Checker = (*CacheChecker)(nil)
)
