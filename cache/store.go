package cache

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jonwraymond/portalcache/filter"
)

// entry is a cached value with the time it was stored.
type entry[V any] struct {
	Data      V
	Timestamp time.Time
	Key       string
	Tags      []Tag
}

// Stats is a point-in-time view of a store.
type Stats struct {
	Size int
	Keys []string
}

// Option configures a Store.
type Option func(*storeConfig)

type storeConfig struct {
	policy Policy
	now    func() time.Time
}

// WithPolicy sets the caching policy.
func WithPolicy(p Policy) Option {
	return func(c *storeConfig) { c.policy = p }
}

// WithTTL is shorthand for WithPolicy(Policy{TTL: ttl}).
func WithTTL(ttl time.Duration) Option {
	return func(c *storeConfig) { c.policy.TTL = ttl }
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *storeConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// Store is a key→entry map with a fixed TTL. It is safe for concurrent use.
type Store[V any] struct {
	mu      sync.RWMutex
	entries map[string]*entry[V]
	policy  Policy
	now     func() time.Time
}

// NewStore creates an empty store. The default policy is DefaultPolicy().
func NewStore[V any](opts ...Option) *Store[V] {
	cfg := storeConfig{policy: DefaultPolicy(), now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Store[V]{
		entries: make(map[string]*entry[V]),
		policy:  cfg.policy,
		now:     cfg.now,
	}
}

// Policy returns the store policy.
func (s *Store[V]) Policy() Policy {
	return s.policy
}

// Get returns the value for key if present and no older than the TTL.
// An expired entry is evicted as a side effect.
func (s *Store[V]) Get(key string) (V, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	var zero V
	if !ok {
		return zero, false
	}

	if s.now().Sub(e.Timestamp) > s.policy.TTL {
		s.mu.Lock()
		// Only evict the entry we inspected; a concurrent Set may have replaced it.
		if current, ok := s.entries[key]; ok && current == e {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return zero, false
	}

	return e.Data, true
}

// Set inserts or overwrites the entry for key, stamped with the current time.
// It is a no-op when the policy disables caching.
func (s *Store[V]) Set(key string, data V, tags ...Tag) {
	if !s.policy.ShouldCache() {
		return
	}

	e := &entry[V]{
		Data:      data,
		Timestamp: s.now(),
		Key:       key,
	}
	if len(tags) > 0 {
		e.Tags = append([]Tag(nil), tags...)
	}

	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()
}

// Delete removes key. Idempotent.
func (s *Store[V]) Delete(key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// Invalidate removes every entry whose key contains pattern as a substring.
// An empty pattern clears the store.
func (s *Store[V]) Invalidate(pattern string) {
	if pattern == "" {
		s.Clear()
		return
	}
	s.removeWhere(func(e *entry[V]) bool {
		return strings.Contains(e.Key, pattern)
	})
}

// InvalidateTags removes every entry carrying any of tags.
func (s *Store[V]) InvalidateTags(tags ...Tag) {
	if len(tags) == 0 {
		return
	}
	s.removeWhere(func(e *entry[V]) bool {
		return hasAnyTag(e.Tags, tags)
	})
}

// InvalidateByFilters removes entries that depend on any recognised dimension
// present in f. Tagged entries match by tag; untagged entries match when their
// key embeds the dimension's `"field":value` fragment. With no recognised
// dimension present the whole store is cleared.
func (s *Store[V]) InvalidateByFilters(f filter.Filters) {
	tags := TagsFor(f)
	if len(tags) == 0 {
		s.Clear()
		return
	}
	fragments := keyFragments(f)
	s.removeWhere(func(e *entry[V]) bool {
		if len(e.Tags) > 0 {
			return hasAnyTag(e.Tags, tags)
		}
		for _, frag := range fragments {
			if strings.Contains(e.Key, frag) {
				return true
			}
		}
		return false
	})
}

// Clear removes all entries.
func (s *Store[V]) Clear() {
	s.mu.Lock()
	s.entries = make(map[string]*entry[V])
	s.mu.Unlock()
}

// Stats reports the number of stored entries and their keys, sorted.
// Expired entries that have not been read yet are included.
func (s *Store[V]) Stats() Stats {
	s.mu.RLock()
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	s.mu.RUnlock()

	sort.Strings(keys)
	return Stats{Size: len(keys), Keys: keys}
}

// Len returns the number of stored entries.
func (s *Store[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store[V]) removeWhere(match func(*entry[V]) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, e := range s.entries {
		if match(e) {
			delete(s.entries, k)
		}
	}
}

var _ Invalidator = (*Store[any])(nil)
