package internal

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/swallow/pkg/health"
	"github.com/dmitrymomot/swallow/pkg/logger"
	"github.com/dmitrymomot/swallow/pkg/metrics"
	"github.com/dmitrymomot/swallow/pkg/query"
)

// unmatchedRoute labels metrics of requests no route matched.
const unmatchedRoute = "unmatched"

// App orchestrates the application lifecycle.
// It owns the route table, the global middleware and the error handler, and
// serves them behind a chi mux that also carries the health and metrics
// endpoints. App is immutable after creation - all configuration is done via New().
type App struct {
	mux            chi.Router
	routes         *RouteTable
	errorHandler   ErrorHandler
	healthConfig   *healthConfig
	logger         *slog.Logger
	sessionManager *SessionManager
	views          *Views
	metrics        *metrics.Recorder
	db             query.Executor
	metricsPath    string
	middlewares    []Middleware
	handlers       []Handler
	staticRoutes   []staticRoute
	queryTimeout   time.Duration
	debug          bool
}

// staticRoute represents a static file handler mount point.
type staticRoute struct {
	handler http.Handler
	pattern string
}

// New creates a new application with the given options.
// The App is immutable after creation.
//
// Example:
//
//	app := swallow.New(
//	    swallow.WithMiddleware(middlewares.RateLimit(limiter)),
//	    swallow.WithHandlers(controllers.NewHome(actions)),
//	)
func New(opts ...Option) *App {
	a := &App{
		mux:         chi.NewRouter(),
		routes:      NewRouteTable(),
		logger:      logger.NewNope(), // Default: noop logger (before options)
		metricsPath: defaultMetricsPath,
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.errorHandler == nil {
		a.errorHandler = NewExceptionHandler(WithTrace(a.debug))
	}

	// Inject app's logger into session manager
	if a.sessionManager != nil {
		a.sessionManager.SetLogger(a.logger)
	}

	a.setupRoutes()
	return a
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

// Routes returns the registered routes in match order.
func (a *App) Routes() []*Route {
	return a.routes.Routes()
}

// Run starts the HTTP server and blocks until shutdown.
//
// Example:
//
//	app := swallow.New(
//	    swallow.WithHandlers(controllers.NewHome(actions)),
//	)
//	err := app.Run(swallow.Address(":8080"), swallow.Logger(log))
func (a *App) Run(opts ...RunOption) error {
	return runServer(a, buildRunConfig(opts...))
}

// setupRoutes registers the infrastructure endpoints on the mux and sends
// everything else through the global middleware to the route table.
func (a *App) setupRoutes() {
	// Register health check endpoints
	if a.healthConfig != nil {
		a.mux.Get(a.healthConfig.livenessPath, health.LivenessHandler())
		a.mux.Get(a.healthConfig.readinessPath, health.ReadinessHandler(a.healthConfig.checks,
			health.WithLogger(a.logger)))
	}

	if a.metrics != nil {
		a.mux.Handle(a.metricsPath, a.metrics.Handler())
	}

	// Mount static file handlers
	for _, sr := range a.staticRoutes {
		a.mux.Mount(sr.pattern, sr.handler)
	}

	// Register handlers
	for _, h := range a.handlers {
		h.Routes(a.routes)
	}

	dispatch := a.wrapHandler(chain(a.routes.Dispatch, a.middlewares))
	a.mux.Handle("/*", dispatch)
	a.mux.NotFound(dispatch)
	a.mux.MethodNotAllowed(dispatch)
}

// wrapHandler converts a HandlerFunc to http.HandlerFunc using the app's error handler.
func (a *App) wrapHandler(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()

		c := newContext(w, r, a)
		if err := h(c); err != nil {
			a.handleError(c, err)
		}
		// Commit the header so write hooks run for handlers that wrote nothing.
		if !c.Written() {
			c.ResponseWriter().WriteHeader(c.ResponseWriter().Status())
		}

		if a.metrics != nil {
			route := unmatchedRoute
			if rt := c.Route(); rt != nil {
				route = rt.Pattern()
			}
			a.metrics.ObserveRequest(route, r.Method, c.ResponseWriter().Status(), time.Since(started))
		}
	}
}

// handleError handles errors from handlers using the configured error handler.
func (a *App) handleError(c Context, err error) {
	// Check if response has already been written
	if c.Written() {
		c.LogWarn("error after response was written", slog.Any("error", err))
		return
	}
	if herr := a.errorHandler(c, err); herr != nil {
		c.LogError("error handler failed", slog.Any("error", herr), slog.Any("cause", err))
		if !c.Written() {
			http.Error(c.Response(), http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}
}

// healthConfig holds health check endpoint configuration.
type healthConfig struct {
	checks        health.Checks
	livenessPath  string
	readinessPath string
}

// Default infrastructure paths.
const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
	defaultMetricsPath   = "/metrics"
)

// HealthOption configures health check endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath sets a custom liveness endpoint path.
// Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath sets a custom readiness endpoint path.
// Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessCheck adds a named readiness check.
// Checks run in parallel during readiness probe.
//
// Example:
//
//	swallow.WithReadinessCheck("db", db.Healthcheck(pool))
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		if c.checks == nil {
			c.checks = make(health.Checks)
		}
		c.checks[name] = fn
	}
}
