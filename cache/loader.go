package cache

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/portalcache/observe"
)

// FetchFunc loads the value for a key from the source of truth.
type FetchFunc[V any] func(ctx context.Context) (V, error)

// LoaderOption configures a Loader.
type LoaderOption func(*loaderConfig)

type loaderConfig struct {
	singleflight bool
	logger       observe.Logger
	metrics      observe.Metrics
}

// WithSingleflight coalesces concurrent misses for the same key into one
// fetch. Off by default: concurrent misses each fetch and the last Set wins.
func WithSingleflight() LoaderOption {
	return func(c *loaderConfig) { c.singleflight = true }
}

// WithLoaderLogger sets the logger used for lookup debug lines.
func WithLoaderLogger(l observe.Logger) LoaderOption {
	return func(c *loaderConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithLoaderMetrics sets the recorder for hit/miss counts.
func WithLoaderMetrics(m observe.Metrics) LoaderOption {
	return func(c *loaderConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// Loader is a read-through front for a Store.
//
// On a hit the cached value is returned and fetch is not called. On a miss
// fetch runs; a successful result is stored with the given tags, an error is
// returned unchanged and nothing is stored.
type Loader[V any] struct {
	store   *Store[V]
	group   *singleflight.Group
	logger  observe.Logger
	metrics observe.Metrics
}

// NewLoader creates a Loader over store.
func NewLoader[V any](store *Store[V], opts ...LoaderOption) *Loader[V] {
	cfg := loaderConfig{
		logger:  observe.NoopLogger(),
		metrics: observe.NoopMetrics(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	l := &Loader[V]{
		store:   store,
		logger:  cfg.logger,
		metrics: cfg.metrics,
	}
	if cfg.singleflight {
		l.group = &singleflight.Group{}
	}
	return l
}

// Store returns the underlying store.
func (l *Loader[V]) Store() *Store[V] {
	return l.store
}

// Load returns the cached value for key or fetches and caches it. A key that
// fails ValidateKey bypasses the store: fetch runs every time and nothing is
// cached.
//
// With singleflight the shared fetch runs detached from any one caller's
// cancellation; a caller whose ctx ends stops waiting with ctx.Err() while
// the others still receive the result.
func (l *Loader[V]) Load(ctx context.Context, key string, tags []Tag, fetch FetchFunc[V]) (V, error) {
	if err := ValidateKey(key); err != nil {
		l.logger.Debug(ctx, "cache bypassed", observe.F("cache.key_len", len(key)), observe.Err(err))
		return fetch(ctx)
	}

	query := Prefix(key)

	if v, ok := l.store.Get(key); ok {
		l.metrics.RecordCacheLookup(ctx, query, true)
		l.logger.Debug(ctx, "cache hit", observe.F("cache.key", key))
		return v, nil
	}
	l.metrics.RecordCacheLookup(ctx, query, false)
	l.logger.Debug(ctx, "cache miss", observe.F("cache.key", key))

	if l.group == nil {
		return l.fetchAndStore(ctx, key, tags, fetch)
	}

	shared := context.WithoutCancel(ctx)
	ch := l.group.DoChan(key, func() (any, error) {
		// A caller that finished while we waited may have filled the key.
		if v, ok := l.store.Get(key); ok {
			return v, nil
		}
		return l.fetchAndStore(shared, key, tags, fetch)
	})

	var zero V
	var res singleflight.Result
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return zero, res.Err
	}
	v, ok := res.Val.(V)
	if !ok {
		return zero, fmt.Errorf("%w: singleflight result %T", ErrTypeMismatch, res.Val)
	}
	return v, nil
}

func (l *Loader[V]) fetchAndStore(ctx context.Context, key string, tags []Tag, fetch FetchFunc[V]) (V, error) {
	v, err := fetch(ctx)
	if err != nil {
		return v, err
	}
	l.store.Set(key, v, tags...)
	return v, nil
}

// Fetch runs a typed read-through over a Loader holding heterogeneous values.
// A cached value of the wrong type is dropped and reported as ErrTypeMismatch.
func Fetch[T any](ctx context.Context, l *Loader[any], key string, tags []Tag, fetch FetchFunc[T]) (T, error) {
	var zero T
	v, err := l.Load(ctx, key, tags, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		l.store.Delete(key)
		return zero, fmt.Errorf("%w: key %q holds %T", ErrTypeMismatch, key, v)
	}
	return typed, nil
}
