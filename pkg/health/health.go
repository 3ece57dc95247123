package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// CheckFunc matches db.Healthcheck, redis.Healthcheck and cache probes.
type CheckFunc func(ctx context.Context) error

// Checks maps check names to probes.
type Checks map[string]CheckFunc

// Response is the JSON body of both probes.
type Response struct {
	Checks map[string]Check `json:"checks,omitempty"`
	Status string           `json:"status"`
}

// Check is the outcome of one probe.
type Check struct {
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
	Duration string `json:"duration"`
}

type prober struct {
	logger  *slog.Logger
	timeout time.Duration
}

// Option configures the readiness probe.
type Option func(*prober)

// WithTimeout bounds the whole check run. Default: 5s.
func WithTimeout(d time.Duration) Option {
	return func(p *prober) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithLogger logs failed checks at warn level.
func WithLogger(l *slog.Logger) Option {
	return func(p *prober) {
		if l != nil {
			p.logger = l
		}
	}
}

func newProber(opts []Option) prober {
	p := prober{timeout: 5 * time.Second, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// Run executes all checks concurrently under one deadline.
func Run(ctx context.Context, checks Checks, opts ...Option) *Response {
	return newProber(opts).run(ctx, checks)
}

type outcome struct {
	name  string
	check Check
}

func (p prober) run(ctx context.Context, checks Checks) *Response {
	resp := &Response{Status: StatusHealthy}
	if len(checks) == 0 {
		return resp
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	results := make(chan outcome, len(checks))
	var g errgroup.Group
	for name, fn := range checks {
		g.Go(func() error {
			started := time.Now()
			err := fn(ctx)
			c := Check{Status: StatusHealthy, Duration: time.Since(started).String()}
			if err != nil {
				c.Status, c.Error = StatusUnhealthy, err.Error()
				p.logger.WarnContext(ctx, "health check failed", slog.String("check", name), slog.Any("error", err))
			}
			results <- outcome{name: name, check: c}
			return nil
		})
	}
	_ = g.Wait()
	close(results)

	resp.Checks = make(map[string]Check, len(checks))
	for r := range results {
		resp.Checks[r.name] = r.check
		if r.check.Status == StatusUnhealthy {
			resp.Status = StatusUnhealthy
		}
	}
	return resp
}

// LivenessHandler answers 200 while the process serves requests.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond(w, r, http.StatusOK, &Response{Status: StatusHealthy})
	}
}

// ReadinessHandler runs checks on every request and answers 503 when any
// fails.
func ReadinessHandler(checks Checks, opts ...Option) http.HandlerFunc {
	p := newProber(opts)
	return func(w http.ResponseWriter, r *http.Request) {
		resp := p.run(r.Context(), checks)
		code := http.StatusOK
		if resp.Status != StatusHealthy {
			code = http.StatusServiceUnavailable
		}
		respond(w, r, code, resp)
	}
}

func respond(w http.ResponseWriter, r *http.Request, code int, resp *Response) {
	if r.URL.Query().Get("format") == "json" || strings.Contains(r.Header.Get("Accept"), "application/json") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(resp)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	text := http.StatusText(code)
	if code == http.StatusOK {
		text = "OK"
	}
	_, _ = w.Write([]byte(text))
}
