// Package health reports whether the pieces a portal client depends on are
// usable: the remote API, the local draft store and the query cache.
//
// A Checker reports a Result with one of three statuses: Healthy, Degraded or
// Unhealthy. An Aggregator runs a set of named checkers concurrently and folds
// their results into one overall status.
//
//	agg := health.NewAggregator()
//	agg.Register(health.NewRemoteChecker(client, "health"))
//	agg.Register(health.NewStoreChecker(store))
//	agg.Register(health.NewCacheChecker(cacheStore, 10_000))
//
//	report := agg.Run(ctx)
//	if report.Status == health.StatusUnhealthy {
//	    log.Printf("portal unhealthy: %v", report.Checks)
//	}
//
// Handler exposes a report as JSON for embedding applications that already
// serve HTTP.
package health
