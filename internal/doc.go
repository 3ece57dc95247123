// Package internal provides the core types and implementation for the Swallow framework.
//
// This package is internal and should not be used directly. Import "github.com/dmitrymomot/swallow"
// instead, which re-exports the public API.
//
// # Core Types
//
//   - App: Orchestrates the application lifecycle, routing, and graceful shutdown
//   - Context: Provides request/response access, request data, sessions, and helper methods
//   - Route: A method, a path pattern with {name} placeholders, a handler and its middleware
//   - RouteTable: The ordered route list and its dispatcher
//   - Router: Interface handlers use to declare routes with HTTP methods and grouping
//   - Actions: Registry of handlers addressed as "Controller@method"
//   - HTTPError: Fault carrying a status code, a message and a captured stack
//   - ErrorHandler: Translates faults into responses (see NewExceptionHandler)
//
// # Request Pipeline
//
// Every request that is not a health or metrics probe goes through the same steps:
//
//  1. The global middleware runs in registration order (rate limiting, request IDs, ...).
//  2. The route table is scanned in registration order. The first route whose
//     pattern matches the escaped path wins; a different method answers 405 and
//     no route at all answers 404.
//  3. Path parameters join the request data bag without overriding query or form values.
//  4. The route middleware runs, then the handler.
//  5. A returned error is handed to the exception handler unless the response
//     was already written.
//
// Example:
//
//	actions := internal.NewActions()
//	_ = actions.Register("HomeController@index", home.Index)
//
//	app := internal.New(
//	    internal.WithMiddleware(middlewares.RateLimit(limiter)),
//	    internal.WithRoutes(func(r internal.Router) {
//	        r.GET("/", actions.Handler("HomeController@index"))
//	        r.GET("/user/{user}/about", actions.Handler("HomeController@index"))
//	    }),
//	)
//
// # Context as context.Context
//
// Context embeds context.Context, so it can be passed directly to any function
// that expects a standard library context. Deadlines set by middleware through
// SetContext therefore reach database calls made with the context:
//
//	func (h *Home) index(c internal.Context) error {
//	    rows, err := c.Table("jobs").Paginate(c, 20, internal.InputValue(c, "page", 1))
//	    if err != nil {
//	        return err
//	    }
//	    return c.JSON(http.StatusOK, rows)
//	}
//
// # Sessions
//
// With WithSession, Context.Session returns the visitor session, creating an
// unsaved one when the request carries no valid cookie. A session is stored,
// and its cookie written, only after something was put in it; changes are
// saved right before the response is written.
package internal
