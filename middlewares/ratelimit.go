package middlewares

import (
	"errors"
	"math"
	"strconv"

	"github.com/dmitrymomot/swallow/internal"
	"github.com/dmitrymomot/swallow/pkg/metrics"
	"github.com/dmitrymomot/swallow/pkg/ratelimit"
)

// Rate limit response headers.
const (
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRetryAfter         = "Retry-After"
)

// RateLimitConfig configures the rate limit middleware.
type RateLimitConfig struct {
	Key     internal.Extractor
	Metrics *metrics.Recorder
}

// RateLimitOption configures RateLimitConfig.
type RateLimitOption func(*RateLimitConfig)

// WithRateLimitKey sets how the client is identified. Default: client IP.
func WithRateLimitKey(sources ...internal.ExtractorSource) RateLimitOption {
	return func(cfg *RateLimitConfig) {
		if len(sources) > 0 {
			cfg.Key = internal.NewExtractor(sources...)
		}
	}
}

// WithRateLimitMetrics counts rejected requests in rec.
func WithRateLimitMetrics(rec *metrics.Recorder) RateLimitOption {
	return func(cfg *RateLimitConfig) {
		cfg.Metrics = rec
	}
}

// RateLimit returns middleware counting every request against limiter.
//
// Allowed requests get X-RateLimit-Limit and X-RateLimit-Remaining headers.
// A client over its limit is rejected with RateLimitExceeded (429) before the
// request reaches a route. Cache failures propagate as internal faults.
//
// Example:
//
//	limiter := ratelimit.New(windows, cfg.RateLimit.Limit, ratelimit.WithWindow(cfg.RateLimit.Window))
//	swallow.New(
//	    swallow.WithMiddleware(middlewares.RateLimit(limiter)),
//	)
func RateLimit(limiter *ratelimit.Limiter, opts ...RateLimitOption) internal.Middleware {
	cfg := &RateLimitConfig{
		Key: internal.NewExtractor(internal.FromClientIP()),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			client, ok := cfg.Key.Extract(c)
			if !ok {
				client = c.ClientIP()
			}

			res, err := limiter.Allow(c.Context(), client)
			switch {
			case errors.Is(err, ratelimit.ErrLimitExceeded):
				cfg.Metrics.ObserveRateLimited(routePattern(c, "global"))

				retry := math.Ceil(res.RetryAfter.Seconds())
				c.SetHeader(HeaderRetryAfter, strconv.Itoa(int(retry)))
				c.LogInfo("rate limit exceeded", "client", client, "count", res.Count, "limit", res.Limit)
				return internal.RateLimitExceeded(client)
			case err != nil:
				return err
			}

			c.SetHeader(HeaderRateLimitLimit, strconv.Itoa(res.Limit))
			c.SetHeader(HeaderRateLimitRemaining, strconv.Itoa(res.Remaining))
			return next(c)
		}
	}
}
