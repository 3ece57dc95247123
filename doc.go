// Package swallow is a small web framework: ordered routes with path
// parameters, a fluent query builder, pluggable caches, per-client rate
// limiting and one place where every failure becomes an HTTP response.
//
// # Quick Start
//
// Register actions, declare routes and run the server:
//
//	actions := swallow.NewActions()
//	_ = actions.Controller("HomeController", map[string]swallow.HandlerFunc{
//	    "index": home.Index,
//	})
//
//	app := swallow.New(
//	    swallow.WithLogger(log),
//	    swallow.WithDatabase(query.Pgx(pool)),
//	    swallow.WithMiddleware(middlewares.RateLimit(limiter)),
//	    swallow.WithRoutes(func(r swallow.Router) {
//	        r.GET("/", actions.Handler("HomeController@index"))
//	        r.GET("/user/{user}/about", actions.Handler("HomeController@index"))
//	    }),
//	)
//
//	if err := app.Run(swallow.Address(":8080")); err != nil {
//	    log.Error("server", "error", err)
//	}
//
// # Routing
//
// Routes are tried in registration order and the first one whose pattern
// matches the path wins. If its method differs the request fails with 405,
// even when a later route would accept the method. Path parameters are
// copied into Context.Input without overriding query or form values.
//
// # Faults
//
// Handlers and middleware return errors instead of writing failures. The
// exception handler maps fault kinds to statuses (404 for missing routes,
// views and methods, 405, 401, 429, 519 for bad configuration, 500 for the
// rest) and answers JSON, multipart or the "error" view depending on the
// Accept header. WithDebug adds the fault message and stack trace.
//
// # Data access
//
// Context.Table starts a query.Builder on the configured database. Statements
// run with the request context, so deadlines set by middlewares.Timeout apply.
//
// # Shutdown
//
// Run handles SIGINT/SIGTERM for graceful shutdown. Register cleanup
// functions with ShutdownHook:
//
//	app.Run(swallow.ShutdownHook(db.Shutdown(pool)))
package swallow
