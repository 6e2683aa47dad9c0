package cache

import (
	"errors"
	"strings"

	"github.com/jonwraymond/portalcache/filter"
)

// MaxKeyLength is the maximum allowed length for a cache key.
const MaxKeyLength = 512

// Sentinel errors for cache operations.
var (
	ErrInvalidKey   = errors.New("cache: key is invalid")
	ErrKeyTooLong   = errors.New("cache: key exceeds max length")
	ErrTypeMismatch = errors.New("cache: cached value has unexpected type")
)

// Invalidator drops cached entries ahead of expiry. Write-path services hold
// one so they can invalidate what a mutation made stale.
type Invalidator interface {
	// Invalidate clears every entry whose key contains pattern, or the whole
	// store when pattern is empty.
	Invalidate(pattern string)

	// InvalidateTags clears every entry tagged with any of tags.
	InvalidateTags(tags ...Tag)

	// InvalidateByFilters clears entries depending on the present filter
	// dimensions, or everything when none are present.
	InvalidateByFilters(f filter.Filters)

	// Clear empties the store.
	Clear()
}

// ValidateKey checks if a key is valid for caching.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}
