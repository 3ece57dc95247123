package internal

// Handler declares routes on a router.
//
// Example:
//
//	type HomeController struct {
//	    jobs *model.Model[models.Job]
//	}
//
//	func (h *HomeController) Routes(r swallow.Router) {
//	    r.GET("/", h.index)
//	    r.GET("/docs", h.docs)
//	}
type Handler interface {
	Routes(r Router)
}

// RoutesFunc adapts a function to the Handler interface.
type RoutesFunc func(r Router)

// Routes calls f(r).
func (f RoutesFunc) Routes(r Router) {
	f(r)
}

// HandlerFunc is the signature for route handlers.
// It receives a Context and returns an error.
// Returning a non-nil error hands the fault to the exception handler.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc to add cross-cutting concerns.
// Middleware can inspect/modify the request, short-circuit processing
// by returning an error, or wrap the response.
//
// Example:
//
//	func Auth(next swallow.HandlerFunc) swallow.HandlerFunc {
//	    return func(c swallow.Context) error {
//	        if c.Header("Authorization") == "" {
//	            return swallow.AuthorizationDenied("")
//	        }
//	        return next(c)
//	    }
//	}
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler handles errors returned from handlers.
type ErrorHandler func(Context, error) error
