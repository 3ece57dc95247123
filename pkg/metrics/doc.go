// Package metrics exposes Prometheus collectors for the framework: request
// counts and latency per route pattern, rate limiter rejections and cache
// operations.
//
//	rec := metrics.NewRecorder(nil)
//	store = metrics.InstrumentCache(store, rec, cfg.Cache.Driver)
//	app := swallow.New(swallow.WithMetrics(rec))
//
// The recorder's registry is served at /metrics.
package metrics
