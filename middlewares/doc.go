// Package middlewares provides HTTP middleware for Swallow applications.
//
// Global middleware (swallow.WithMiddleware) wraps dispatch, so it runs
// before a route is matched. Route middleware (Router.GET(..., mw...) or
// Route.Use) runs after the match, in registration order.
//
// # Request ID
//
// RequestID assigns a unique ID to each request. It keeps an upstream ID
// from the request headers or generates a ULID, and attaches it to faults.
// Use RequestIDExtractor with the logger to add request_id to every record:
//
//	log := logger.New(cfg.Log, logger.WithExtractors(middlewares.RequestIDExtractor()))
//	app := swallow.New(
//	    swallow.WithLogger(log),
//	    swallow.WithMiddleware(middlewares.RequestID()),
//	)
//
// # Recover
//
// Recover turns panics into internal faults (500) wrapping a PanicError.
//
// # Timeout
//
// Timeout attaches a deadline to the request context. Queries and other
// ctx-aware calls stop when it passes; a late request is answered with 504.
//
//	swallow.WithMiddleware(middlewares.Timeout(5 * time.Second))
//
// # Rate limiting
//
// RateLimit counts requests per client IP in a ratelimit.Limiter and rejects
// clients over the limit with 429:
//
//	limiter := ratelimit.New(windows, 60)
//	swallow.WithMiddleware(middlewares.RateLimit(limiter))
//
// # Authentication
//
// Auth is a stub marking every request as user 1453. Authorize rejects
// requests with 401 when its check fails:
//
//	r.GET("/admin", handler, middlewares.Auth(), middlewares.Authorize(isAdmin, ""))
//
// # Sessions and logging
//
// StartSession loads or creates the session before the handler runs.
// RequestLogger writes one log line per request.
package middlewares
