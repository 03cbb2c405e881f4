// Package health reports whether a rendering proxy can serve requests.
//
// A Checker reports the status of one dependency: the engine session, the
// plane cache service, or the engine circuit breaker. An Aggregator runs all
// registered checkers concurrently and folds their results into one Status.
//
// # Checkers
//
//	agg := health.NewAggregator()
//	agg.Register("session", health.NewSessionChecker(keeper))
//	agg.Register("cache", health.NewCacheChecker(svc, health.CacheCheckerConfig{
//	    CapacityBytes: policy.CapacityBytes,
//	}))
//	agg.Register("engine", health.NewBreakerChecker(exec.Breaker()))
//
// # HTTP Endpoints
//
//	mux := http.NewServeMux()
//	health.RegisterHandlers(mux, agg)
//
// registers /healthz (liveness), /readyz (readiness), /health (detailed JSON)
// and /health/{name} (one checker).
package health
