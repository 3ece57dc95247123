package middlewares

import "github.com/dmitrymomot/swallow/internal"

// StubUserID is the identity the Auth stub assigns to every request.
const StubUserID = "1453"

// Auth returns a stub authentication middleware. It performs no check and
// marks every request as user StubUserID by setting the "id" and "name"
// request values.
func Auth() internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			in := c.Input()
			in.Set("id", StubUserID)
			in.Set("name", StubUserID)
			return next(c)
		}
	}
}

// AuthorizeFunc decides whether the request may proceed.
type AuthorizeFunc func(c internal.Context) bool

// Authorize returns middleware rejecting requests for which allow reports
// false with AuthorizationDenied (401). An empty message uses the default
// denial message.
//
// Example:
//
//	r.DELETE("/jobs/{id}", actions.Handler("JobController@delete"),
//	    middlewares.Auth(),
//	    middlewares.Authorize(func(c swallow.Context) bool {
//	        return c.Input().String("id") != ""
//	    }, ""),
//	)
func Authorize(allow AuthorizeFunc, message string) internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			if allow == nil || !allow(c) {
				return internal.AuthorizationDenied(message)
			}
			return next(c)
		}
	}
}
