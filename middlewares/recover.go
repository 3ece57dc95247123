package middlewares

import (
	"fmt"
	"net/http"
	"runtime"

	"github.com/dmitrymomot/swallow/internal"
)

// DefaultStackSize is the default maximum stack trace size in bytes.
const DefaultStackSize = 4096

type recoverConfig struct {
	stackSize int
	noStack   bool
}

// RecoverOption configures the Recover middleware.
type RecoverOption func(*recoverConfig)

// WithRecoverStackSize caps the captured stack at size bytes.
func WithRecoverStackSize(size int) RecoverOption {
	return func(cfg *recoverConfig) {
		if size > 0 {
			cfg.stackSize = size
		}
	}
}

// WithRecoverDisablePrintStack skips stack capture.
func WithRecoverDisablePrintStack() RecoverOption {
	return func(cfg *recoverConfig) {
		cfg.noStack = true
	}
}

// Recover returns middleware that recovers from panics.
// The panic becomes an internal fault (500) wrapping a PanicError, so the
// exception handler answers it like any other failure and debug mode shows
// where it happened.
func Recover(opts ...RecoverOption) internal.Middleware {
	cfg := &recoverConfig{stackSize: DefaultStackSize}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				// http.ErrAbortHandler is the documented way to abort a response.
				if r == http.ErrAbortHandler {
					panic(r)
				}

				pe := &PanicError{Value: r}
				attrs := []any{"panic", r, "route", routePattern(c, "unmatched")}
				if !cfg.noStack {
					pe.Stack = make([]byte, cfg.stackSize)
					pe.Stack = pe.Stack[:runtime.Stack(pe.Stack, false)]
					attrs = append(attrs, "stack", string(pe.Stack))
				}
				c.LogError("panic recovered", attrs...)

				err = internal.NewHTTPError(http.StatusInternalServerError, fmt.Sprint(r), internal.WithError(pe))
			}()

			return next(c)
		}
	}
}
