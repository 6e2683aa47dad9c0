// Package cache provides the short-horizon, in-memory query cache used by the
// portal data services.
//
// A Store maps canonical keys (see BuildKey) to values with a single fixed
// TTL, five minutes by default. Expired entries read as absent and are evicted
// on access. Entries may carry Tags naming the filter dimensions they depend
// on, so write paths can invalidate by dimension instead of by key format.
//
// Loader layers read-through semantics over a Store: hits never call the
// fetch function, misses fetch and populate, and failed fetches leave the
// store untouched.
//
// Nothing here is durable. A Store lives as long as the process that built
// it and is meant to be constructed once and injected into each service.
package cache
