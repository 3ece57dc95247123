package middlewares

import "github.com/dmitrymomot/swallow/internal"

// StartSession returns middleware that loads or creates the request session
// before the handler runs. It binds the session to the request context,
// which the session cache backend reads from. A new session is stored only
// once something is written to it.
func StartSession() internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			if _, err := c.Session(); err != nil {
				return err
			}
			return next(c)
		}
	}
}
