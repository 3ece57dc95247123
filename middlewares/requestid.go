package middlewares

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/swallow/internal"
	"github.com/dmitrymomot/swallow/pkg/id"
	"github.com/dmitrymomot/swallow/pkg/logger"
)

// HeaderRequestID is the default response header carrying the request ID.
const HeaderRequestID = "X-Request-ID"

type requestIDKey struct{}

type requestIDConfig struct {
	generate func() string
	header   string
	source   internal.Extractor
}

// RequestIDOption configures the RequestID middleware.
type RequestIDOption func(*requestIDConfig)

// WithRequestIDHeaders sets the request headers an upstream ID is read
// from, in priority order.
func WithRequestIDHeaders(headers ...string) RequestIDOption {
	return func(cfg *requestIDConfig) {
		cfg.source = cfg.source[:0]
		for _, h := range headers {
			cfg.source = append(cfg.source, internal.FromHeader(h))
		}
	}
}

// WithRequestIDGenerator sets how missing IDs are generated. Default: ULID.
func WithRequestIDGenerator(gen func() string) RequestIDOption {
	return func(cfg *requestIDConfig) {
		if gen != nil {
			cfg.generate = gen
		}
	}
}

// WithRequestIDResponseHeader sets the response header echoing the ID.
func WithRequestIDResponseHeader(header string) RequestIDOption {
	return func(cfg *requestIDConfig) {
		if header != "" {
			cfg.header = header
		}
	}
}

// RequestID tags every request with an ID, reusing one sent by an upstream
// proxy. The ID is echoed in the response, added to log records through
// RequestIDExtractor and attached to faults returned by the rest of the chain.
func RequestID(opts ...RequestIDOption) internal.Middleware {
	cfg := &requestIDConfig{
		generate: id.NewULID,
		header:   HeaderRequestID,
		source: internal.NewExtractor(
			internal.FromHeader(HeaderRequestID),
			internal.FromHeader("X-Correlation-ID"),
		),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			reqID, ok := cfg.source.Extract(c)
			if !ok {
				reqID = cfg.generate()
			}

			c.Set(requestIDKey{}, reqID)
			c.SetHeader(cfg.header, reqID)

			err := next(c)
			if he := internal.AsHTTPError(err); he != nil && he.RequestID == "" {
				he.RequestID = reqID
			}
			return err
		}
	}
}

// GetRequestID returns the ID assigned by RequestID, or "".
func GetRequestID(c internal.Context) string {
	v, _ := c.Get(requestIDKey{}).(string)
	return v
}

// RequestIDExtractor adds "request_id" to log records written with a
// request context.
func RequestIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		v, _ := ctx.Value(requestIDKey{}).(string)
		if v == "" {
			return slog.Attr{}, false
		}
		return slog.String("request_id", v), true
	}
}
