// Package routine serves class routines through the read-through cache.
//
// Service answers three queries (the signed-in user's routine, a filtered
// listing and a lookup by id) from a shared cache.Store, fetching from the
// backend only on a miss. Listing filters are sanitised before they reach
// the cache key, so equivalent filter sets share an entry. Write operations
// go straight to the backend and, on success, invalidate the entries they
// made stale.
package routine
