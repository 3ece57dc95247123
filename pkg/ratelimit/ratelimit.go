package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrymomot/swallow/pkg/cache"
)

// Defaults.
const (
	DefaultWindow = 60 * time.Second
	DefaultPrefix = "rate_limit_"
)

// ErrLimitExceeded is returned by Allow when the client used up its window.
var ErrLimitExceeded = errors.New("ratelimit: limit exceeded")

// Window is the stored state of one client's fixed window.
type Window struct {
	LastReset time.Time `json:"last_reset"`
	Count     int       `json:"request_count"`
}

// Result describes the outcome of one Allow call.
type Result struct {
	ResetAt    time.Time
	// RetryAfter is the time left until ResetAt on the limiter's clock,
	// never negative.
	RetryAfter time.Duration
	Limit      int
	Remaining  int
	Count      int
}

// Limiter is a per-client fixed-window counter stored in a cache.
//
// The read-modify-write of a window is serialized within one Limiter.
// Several processes sharing a backend may still race and undercount.
type Limiter struct {
	store  cache.Cache[Window]
	now    func() time.Time
	prefix string
	limit  int
	window time.Duration
	mu     sync.Mutex
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithWindow sets the window length. Default: 60s.
func WithWindow(d time.Duration) Option {
	return func(l *Limiter) {
		if d > 0 {
			l.window = d
		}
	}
}

// WithPrefix sets the cache key prefix. Default: "rate_limit_".
func WithPrefix(p string) Option {
	return func(l *Limiter) {
		l.prefix = p
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// New returns a limiter allowing limit requests per window per client.
func New(store cache.Cache[Window], limit int, opts ...Option) *Limiter {
	l := &Limiter{
		store:  store,
		now:    time.Now,
		prefix: DefaultPrefix,
		limit:  limit,
		window: DefaultWindow,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Limit returns the configured request limit.
func (l *Limiter) Limit() int {
	return l.limit
}

// Allow counts one request from client and reports whether it is within
// the limit. Over the limit it returns the Result together with ErrLimitExceeded.
//
// A missing window starts at count 1. A window older than the window length
// restarts at count 1. Every write extends the entry's expiration to now
// plus the window length.
func (l *Limiter) Allow(ctx context.Context, client string) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := l.prefix + client
	now := l.now()

	w, err := l.store.Get(ctx, key)
	switch {
	case errors.Is(err, cache.ErrNotFound):
		w = Window{LastReset: now, Count: 1}
	case err != nil:
		return Result{}, fmt.Errorf("ratelimit: load window: %w", err)
	case w.LastReset.Add(l.window).Before(now):
		w = Window{LastReset: now, Count: 1}
	default:
		w.Count++
	}

	if err := l.store.Set(ctx, key, w, now.Add(l.window)); err != nil {
		return Result{}, fmt.Errorf("ratelimit: store window: %w", err)
	}

	res := Result{
		Limit:     l.limit,
		Count:     w.Count,
		Remaining: l.limit - w.Count,
		ResetAt:   w.LastReset.Add(l.window),
	}
	res.RetryAfter = max(res.ResetAt.Sub(now), 0)
	if res.Remaining < 0 {
		return res, ErrLimitExceeded
	}
	return res, nil
}

// Reset forgets the window of client.
func (l *Limiter) Reset(ctx context.Context, client string) error {
	return l.store.Delete(ctx, l.prefix+client)
}
