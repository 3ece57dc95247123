package middlewares

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/swallow/internal"
)

// RequestLogger returns middleware that logs one line per request with the
// method, path, matched route, status and duration. Requests failing with a
// server error are logged at error level, other failures at warn level.
func RequestLogger() internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			started := time.Now()
			err := next(c)

			status := c.ResponseWriter().Status()
			if err != nil {
				status = http.StatusInternalServerError
				if he := internal.AsHTTPError(err); he != nil {
					status = he.Code
				}
			}

			attrs := []any{
				slog.String("method", c.Request().Method),
				slog.String("path", c.Request().URL.Path),
				slog.String("route", routePattern(c, "unmatched")),
				slog.Int("status", status),
				slog.Duration("duration", time.Since(started)),
				slog.String("client_ip", c.ClientIP()),
			}

			switch {
			case status >= http.StatusInternalServerError:
				c.LogError("request", append(attrs, slog.Any("error", err))...)
			case err != nil:
				c.LogWarn("request", append(attrs, slog.Any("error", err))...)
			default:
				c.LogInfo("request", attrs...)
			}

			return err
		}
	}
}

// routePattern returns the pattern of the matched route, or fallback when
// the request has not been dispatched.
func routePattern(c internal.Context, fallback string) string {
	if rt := c.Route(); rt != nil {
		return rt.Pattern()
	}
	return fallback
}
