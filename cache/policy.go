package cache

import "time"

// DefaultTTL is how long an entry stays fresh.
const DefaultTTL = 5 * time.Minute

// Policy configures caching behavior for a Store.
type Policy struct {
	// TTL is the fixed freshness window for every entry in the store.
	// If zero, caching is disabled: Set is a no-op and every Get misses.
	TTL time.Duration
}

// DefaultPolicy returns the default caching policy (TTL: 5 minutes).
func DefaultPolicy() Policy {
	return Policy{TTL: DefaultTTL}
}

// NoCachePolicy returns a policy that disables caching entirely.
func NoCachePolicy() Policy {
	return Policy{}
}

// ShouldCache returns true if caching is enabled by this policy.
func (p Policy) ShouldCache() bool {
	return p.TTL > 0
}
