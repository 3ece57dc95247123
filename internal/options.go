package internal

import (
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrymomot/swallow/pkg/metrics"
	"github.com/dmitrymomot/swallow/pkg/query"
	"github.com/dmitrymomot/swallow/pkg/session"
)

// Option configures the application.
type Option func(*App)

// WithMiddleware adds global middleware to the application.
// Global middleware runs before routing, in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithHandlers registers handlers that declare routes.
// Each handler's Routes method is called during setup.
func WithHandlers(h ...Handler) Option {
	return func(a *App) {
		a.handlers = append(a.handlers, h...)
	}
}

// WithRoutes registers routes declared by fn.
//
// Example:
//
//	swallow.WithRoutes(func(r swallow.Router) {
//	    r.GET("/", actions.Handler("HomeController@index"))
//	})
func WithRoutes(fn func(r Router)) Option {
	return func(a *App) {
		if fn != nil {
			a.handlers = append(a.handlers, RoutesFunc(fn))
		}
	}
}

// WithStaticFiles mounts a static file handler at the given pattern.
// Directory listings are disabled. Files are served with default cache headers.
//
// Example:
//
//	//go:embed public
//	var assets embed.FS
//
//	swallow.New(
//	    swallow.WithStaticFiles("/static/", assets, "public"),
//	)
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return func(a *App) {
		subFS, err := fs.Sub(fsys, subDir)
		if err != nil {
			panic(err)
		}

		fileServer := http.StripPrefix(strings.TrimSuffix(pattern, "/"), http.FileServerFS(subFS))

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Block directory listings
			if strings.HasSuffix(r.URL.Path, "/") {
				http.NotFound(w, r)
				return
			}

			w.Header().Set("Cache-Control", "public, max-age=3600")
			w.Header().Set("X-Content-Type-Options", "nosniff")

			fileServer.ServeHTTP(w, r)
		})

		a.staticRoutes = append(a.staticRoutes, staticRoute{handler, pattern})
	}
}

// WithErrorHandler replaces the exception handler.
// Called when a handler or middleware returns a non-nil error.
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) {
		a.errorHandler = h
	}
}

// WithDebug makes the default exception handler expose fault messages
// and stack traces.
func WithDebug(debug bool) Option {
	return func(a *App) {
		a.debug = debug
	}
}

// WithViews sets the view registry used by Context.View and the error page.
func WithViews(v *Views) Option {
	return func(a *App) {
		a.views = v
	}
}

// WithHealthChecks enables health check endpoints with optional configuration.
// Liveness (/health/live): Always returns OK if process is running.
// Readiness (/health/ready): Runs all configured checks.
//
// Example:
//
//	swallow.WithHealthChecks(
//	    swallow.WithReadinessCheck("db", db.Healthcheck(pool)),
//	    swallow.WithReadinessCheck("redis", redis.Healthcheck(client)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := &healthConfig{
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.healthConfig = cfg
	}
}

// WithMetrics records request metrics and serves them at /metrics.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(a *App) {
		a.metrics = rec
	}
}

// WithMetricsPath changes the metrics endpoint path.
func WithMetricsPath(path string) Option {
	return func(a *App) {
		if path != "" {
			a.metricsPath = path
		}
	}
}

// WithLogger sets the application logger.
//
// Example:
//
//	log := logger.New(cfg.Log, logger.WithExtractors(middlewares.RequestIDExtractor()))
//	swallow.New(
//	    swallow.WithLogger(log.With("component", "http")),
//	)
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithSession enables server-side sessions stored in store.
// Sessions are created lazily and saved automatically before the response is written.
//
// Example:
//
//	store := session.NewCacheStore(sessionCache)
//	swallow.New(
//	    swallow.WithSession(store,
//	        swallow.WithSessionCookieName("swallow_session"),
//	        swallow.WithSessionTTL(24*time.Hour),
//	    ),
//	)
func WithSession(store session.Store, opts ...SessionOption) Option {
	return func(a *App) {
		a.sessionManager = NewSessionManager(store, opts...)
	}
}

// WithDatabase sets the executor behind Context.Table.
//
// Example:
//
//	swallow.WithDatabase(query.Pgx(pool))
func WithDatabase(exec query.Executor) Option {
	return func(a *App) {
		a.db = exec
	}
}

// WithQueryTimeout bounds every statement started through Context.Table.
func WithQueryTimeout(d time.Duration) Option {
	return func(a *App) {
		a.queryTimeout = d
	}
}
