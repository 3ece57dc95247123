package swallow

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/swallow/internal"
	"github.com/dmitrymomot/swallow/pkg/health"
	"github.com/dmitrymomot/swallow/pkg/metrics"
	"github.com/dmitrymomot/swallow/pkg/query"
	"github.com/dmitrymomot/swallow/pkg/session"
)

// Type aliases - public API
type (
	// App orchestrates the application lifecycle.
	// It owns the route table, middleware, error handling and graceful shutdown.
	App = internal.App

	// Router is the interface handlers use to declare routes.
	Router = internal.Router

	// Route is one registered method and path pattern.
	Route = internal.Route

	// RouteTable is the ordered list of routes an App dispatches to.
	RouteTable = internal.RouteTable

	// Params maps path parameter names to their raw segments.
	Params = internal.Params

	// Context provides request/response access and helper methods.
	Context = internal.Context

	// Input is the per-request data bag of query, form and path values.
	Input = internal.Input

	// Handler declares routes on a router.
	Handler = internal.Handler

	// RoutesFunc adapts a function to Handler.
	RoutesFunc = internal.RoutesFunc

	// HandlerFunc is the signature for route handlers.
	HandlerFunc = internal.HandlerFunc

	// Middleware wraps a HandlerFunc to add cross-cutting concerns.
	Middleware = internal.Middleware

	// ErrorHandler handles errors returned from handlers.
	ErrorHandler = internal.ErrorHandler

	// Actions maps "Controller@method" names to handlers.
	Actions = internal.Actions

	// Views maps view names to components.
	Views = internal.Views

	// ViewFunc builds the component of a view.
	ViewFunc = internal.ViewFunc

	// ErrorPage is the data handed to the error view.
	ErrorPage = internal.ErrorPage

	// Component is the interface for renderable templates.
	Component = internal.Component

	// HTTPError is a fault carrying its HTTP status.
	HTTPError = internal.HTTPError

	// HTTPErrorOption configures an HTTPError.
	HTTPErrorOption = internal.HTTPErrorOption

	// Option configures the application.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// HealthOption configures health check endpoints.
	HealthOption = internal.HealthOption

	// ExceptionOption configures the exception handler.
	ExceptionOption = internal.ExceptionOption

	// SessionOption configures the session manager.
	SessionOption = internal.SessionOption

	// Session represents a user session.
	Session = session.Session

	// SessionStore defines the interface for session persistence.
	SessionStore = session.Store

	// ResponseWriter wraps http.ResponseWriter with write hooks.
	ResponseWriter = internal.ResponseWriter

	// Extractor tries several request sources in order.
	Extractor = internal.Extractor

	// Scalar is the set of types the typed request accessors convert to.
	Scalar = internal.Scalar

	// ExtractorSource reads one value from a request.
	ExtractorSource = internal.ExtractorSource
)

const (
	// StatusEnvPropertyInvalid is the status of misconfigured environment properties.
	StatusEnvPropertyInvalid = internal.StatusEnvPropertyInvalid

	// ErrorViewName is the view the exception handler renders for HTML clients.
	ErrorViewName = internal.ErrorViewName
)

// Fault kinds, for errors.Is.
var (
	ErrRouteNotFound       = internal.ErrRouteNotFound
	ErrMethodNotAllowed    = internal.ErrMethodNotAllowed
	ErrMethodNotFound      = internal.ErrMethodNotFound
	ErrControllerNotFound  = internal.ErrControllerNotFound
	ErrViewNotFound        = internal.ErrViewNotFound
	ErrRateLimitExceeded   = internal.ErrRateLimitExceeded
	ErrAuthorizationDenied = internal.ErrAuthorizationDenied
	ErrEnvPropertyInvalid  = internal.ErrEnvPropertyInvalid
)

// Constructors

// New creates a new application with the given options.
// The App is immutable after creation.
//
// Example:
//
//	actions := swallow.NewActions()
//	app := swallow.New(
//	    swallow.WithMiddleware(middlewares.RateLimit(limiter)),
//	    swallow.WithRoutes(func(r swallow.Router) {
//	        r.GET("/", actions.Handler("HomeController@index"))
//	    }),
//	)
//
//	err := app.Run(swallow.Address(":8080"), swallow.Logger(log))
func New(opts ...Option) *App {
	return internal.New(opts...)
}

// NewActions creates an empty action registry.
func NewActions() *Actions {
	return internal.NewActions()
}

// NewViews creates an empty view registry.
func NewViews() *Views {
	return internal.NewViews()
}

// NewExceptionHandler returns the default fault-to-response translator.
// Pass it to WithErrorHandler to add mappings.
func NewExceptionHandler(opts ...ExceptionOption) ErrorHandler {
	return internal.NewExceptionHandler(opts...)
}

// App options

// WithMiddleware adds global middleware to the application.
// Global middleware runs before routing, in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return internal.WithMiddleware(mw...)
}

// WithHandlers registers handlers that declare routes.
// Each handler's Routes method is called during setup.
func WithHandlers(h ...Handler) Option {
	return internal.WithHandlers(h...)
}

// WithRoutes registers the routes declared by fn.
func WithRoutes(fn func(r Router)) Option {
	return internal.WithRoutes(fn)
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
	return internal.WithStaticFiles(pattern, fsys, subDir)
}

// WithErrorHandler replaces the exception handler.
func WithErrorHandler(h ErrorHandler) Option {
	return internal.WithErrorHandler(h)
}

// WithDebug exposes fault messages and stack traces in error responses.
func WithDebug(debug bool) Option {
	return internal.WithDebug(debug)
}

// WithViews sets the view registry.
func WithViews(v *Views) Option {
	return internal.WithViews(v)
}

// WithHealthChecks enables health check endpoints with optional configuration.
// Liveness (/health/live): Always returns OK if process is running.
// Readiness (/health/ready): Runs all configured checks.
//
// Example:
//
//	swallow.WithHealthChecks(
//	    swallow.WithReadinessCheck("db", db.Healthcheck(pool)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return internal.WithHealthChecks(opts...)
}

// WithMetrics records request metrics and serves them at /metrics.
func WithMetrics(rec *metrics.Recorder) Option {
	return internal.WithMetrics(rec)
}

// WithMetricsPath changes the metrics endpoint path.
func WithMetricsPath(path string) Option {
	return internal.WithMetricsPath(path)
}

// WithLogger sets the application logger.
func WithLogger(l *slog.Logger) Option {
	return internal.WithLogger(l)
}

// WithDatabase sets the executor behind Context.Table.
func WithDatabase(exec query.Executor) Option {
	return internal.WithDatabase(exec)
}

// WithQueryTimeout bounds every statement started through Context.Table.
func WithQueryTimeout(d time.Duration) Option {
	return internal.WithQueryTimeout(d)
}

// Exception options

// WithTrace includes fault messages and stack traces in responses.
func WithTrace(debug bool) ExceptionOption {
	return internal.WithTrace(debug)
}

// WithErrorView sets the view rendered for HTML clients.
func WithErrorView(name string) ExceptionOption {
	return internal.WithErrorView(name)
}

// WithErrorMapping answers errors matching target with status.
//
// Example:
//
//	swallow.WithErrorHandler(swallow.NewExceptionHandler(
//	    swallow.WithErrorMapping(cache.ErrUnknownDriver, swallow.StatusEnvPropertyInvalid),
//	))
func WithErrorMapping(target error, status int) ExceptionOption {
	return internal.WithErrorMapping(target, status)
}

// Health check options

// WithLivenessPath sets a custom liveness endpoint path.
// Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return internal.WithLivenessPath(path)
}

// WithReadinessPath sets a custom readiness endpoint path.
// Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return internal.WithReadinessPath(path)
}

// WithReadinessCheck adds a named readiness check.
// Checks run in parallel during readiness probe.
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

// Run options

// Address sets the HTTP server address.
// Defaults to ":8080".
func Address(addr string) RunOption {
	return internal.Address(addr)
}

// Logger sets the runtime logger.
// If nil, logging is disabled.
func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

// ShutdownTimeout sets the timeout for graceful shutdown.
// This applies to both the HTTP server and shutdown hooks.
// Defaults to 30 seconds.
func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

// StartupHook registers a function to run before the server starts
// listening. The first failing hook aborts the start.
func StartupHook(fn func(context.Context) error) RunOption {
	return internal.StartupHook(fn)
}

// ShutdownHook registers a cleanup function to run during shutdown.
// Hooks are called in the order they were registered.
// Each hook receives a context with the shutdown timeout.
//
// Example:
//
//	swallow.ShutdownHook(db.Shutdown(pool))
func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

// WithContext sets a custom base context for signal handling.
// Useful for testing or when integrating with existing context hierarchies.
// Defaults to context.Background() if not set.
func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}

// Session options

// WithSession enables server-side session management.
// Sessions are loaded lazily and saved automatically before the response is written.
//
// Example:
//
//	swallow.WithSession(session.NewCacheStore(sessions),
//	    swallow.WithSessionTTL(24*time.Hour),
//	)
func WithSession(store SessionStore, opts ...SessionOption) Option {
	return internal.WithSession(store, opts...)
}

// WithSessionCookieName sets the session cookie name.
func WithSessionCookieName(name string) SessionOption {
	return internal.WithSessionCookieName(name)
}

// WithSessionTTL sets how long a session lives after creation.
func WithSessionTTL(d time.Duration) SessionOption {
	return internal.WithSessionTTL(d)
}

// WithSessionDomain sets the session cookie domain.
func WithSessionDomain(domain string) SessionOption {
	return internal.WithSessionDomain(domain)
}

// WithSessionSecure sets the session cookie Secure flag.
func WithSessionSecure(secure bool) SessionOption {
	return internal.WithSessionSecure(secure)
}

// WithSessionSameSite sets the session cookie SameSite attribute.
func WithSessionSameSite(sameSite http.SameSite) SessionOption {
	return internal.WithSessionSameSite(sameSite)
}

// Faults

// NewHTTPError creates a fault with the given status and message.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.NewHTTPError(code, message, opts...)
}

// WithError records the underlying cause of a fault.
func WithError(err error) HTTPErrorOption {
	return internal.WithError(err)
}

// AuthorizationDenied returns a 401 fault. An empty message uses the default.
func AuthorizationDenied(message string) *HTTPError {
	return internal.AuthorizationDenied(message)
}

// EnvPropertyInvalid returns a 519 fault for an unusable configuration value.
func EnvPropertyInvalid(cause error) *HTTPError {
	return internal.EnvPropertyInvalid(cause)
}

// AsHTTPError returns the HTTPError in err's chain, or nil.
func AsHTTPError(err error) *HTTPError {
	return internal.AsHTTPError(err)
}

// Context helpers

// ContextValue retrieves a typed value from the context.
// Returns the zero value of T if the key is not found or type assertion fails.
func ContextValue[T any](c Context, key any) T {
	return internal.ContextValue[T](c, key)
}

// Param returns the path parameter converted to T, or the zero value.
func Param[T Scalar](c Context, name string) T {
	return internal.Param[T](c, name)
}

// Query returns the query parameter converted to T, or the zero value.
func Query[T Scalar](c Context, name string) T {
	return internal.Query[T](c, name)
}

// InputValue returns the request value converted to T, or defaultValue.
func InputValue[T Scalar](c Context, name string, defaultValue T) T {
	return internal.InputValue[T](c, name, defaultValue)
}

// QueryDefault returns the query parameter name as T, or defaultValue when
// it is empty or unparsable.
func QueryDefault[T Scalar](c Context, name string, defaultValue T) T {
	return internal.QueryDefault[T](c, name, defaultValue)
}
