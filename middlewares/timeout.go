package middlewares

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrymomot/swallow/internal"
)

// DefaultTimeout is the default request timeout.
const DefaultTimeout = 30 * time.Second

// Timeout returns middleware that gives every request a deadline.
//
// The deadline is attached to the request context, so queries started via
// Context.Table and any other ctx-aware call made by the handler stop once it
// passes. A handler that fails after the deadline, or finishes late without
// writing a response, is answered with 504 wrapping a TimeoutError.
// A non-positive timeout selects DefaultTimeout.
func Timeout(timeout time.Duration) internal.Middleware {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			parent := c.Context()
			ctx, cancel := context.WithTimeout(parent, timeout)
			defer cancel()

			c.SetContext(ctx)
			err := next(c)
			c.SetContext(parent)

			if !errors.Is(ctx.Err(), context.DeadlineExceeded) || parent.Err() != nil {
				return err
			}
			if err == nil && c.Written() {
				return nil
			}

			c.LogWarn("request timeout", "timeout", timeout.String())
			return internal.NewHTTPError(http.StatusGatewayTimeout, "Gateway Timeout",
				internal.WithError(errors.Join(&TimeoutError{Duration: timeout}, err)))
		}
	}
}
