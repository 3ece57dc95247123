package internal

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"maps"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrymomot/swallow/pkg/query"
	"github.com/dmitrymomot/swallow/pkg/session"
)

// Context is the per-request handle passed to handlers and middleware.
// It is itself a context.Context bound to the request, so it can be handed
// straight to query, cache and session calls.
type Context interface {
	context.Context

	Request() *http.Request
	Response() http.ResponseWriter
	// ResponseWriter exposes the status, size and write hooks.
	ResponseWriter() *ResponseWriter
	Context() context.Context
	// SetContext swaps the request context, e.g. to attach a deadline.
	SetContext(ctx context.Context)

	// Route is nil until the route table has matched the request.
	Route() *Route
	Param(name string) string
	Params() Params
	// Input merges query, form and path parameters, later sources winning.
	Input() *Input
	Query(name string) string
	QueryDefault(name, defaultValue string) string
	Form(name string) string
	Header(name string) string
	SetHeader(name, value string)
	ClientIP() string

	JSON(code int, v any) error
	String(code int, s string) error
	NoContent(code int) error
	Redirect(code int, url string) error
	// Render writes a templ-compatible component as HTML.
	Render(code int, component Component) error
	// View renders a registered view; unknown names fail with ErrViewNotFound.
	View(code int, name string, data any) error
	// Error builds an HTTPError for the handler to return. Nothing is written.
	Error(code int, message string, opts ...HTTPErrorOption) *HTTPError
	Written() bool

	// Table starts a query bounded by the app's query timeout. Without a
	// database its terminals fail with query.ErrNoExecutor.
	Table(name string) *query.Builder

	Logger() *slog.Logger
	LogDebug(msg string, attrs ...any)
	LogInfo(msg string, attrs ...any)
	LogWarn(msg string, attrs ...any)
	LogError(msg string, attrs ...any)

	// Set and Get store request-scoped values on the request context.
	Set(key any, value any)
	Get(key any) any

	// Session loads the visitor's session, or starts an unsaved one.
	// Dirty sessions are stored right before the response is committed.
	// Without WithSession it fails with session.ErrNotConfigured.
	Session() (*session.Session, error)
	SessionValue(key string) (any, error)
	SetSessionValue(key string, val any) error
	DeleteSessionValue(key string) error
	// AuthenticateSession binds userID and rotates the session token.
	AuthenticateSession(userID string) error
	// DestroySession deletes the stored session, expires the cookie and
	// starts a fresh unsaved one.
	DestroySession() error
}

// requestContext implements the Context interface.
type requestContext struct {
	response       http.ResponseWriter
	request        *http.Request
	responseWriter *ResponseWriter
	app            *App
	route          *Route
	params         Params
	input          *Input
	session        *session.Session

	sessionHookRegistered bool
}

func newContext(w http.ResponseWriter, r *http.Request, app *App) *requestContext {
	rw, ok := w.(*ResponseWriter)
	if !ok {
		rw = NewResponseWriter(w)
	}

	return &requestContext{
		request:        r,
		response:       rw,
		responseWriter: rw,
		app:            app,
	}
}

func (c *requestContext) Request() *http.Request          { return c.request }
func (c *requestContext) Response() http.ResponseWriter   { return c.response }
func (c *requestContext) ResponseWriter() *ResponseWriter { return c.responseWriter }
func (c *requestContext) Context() context.Context        { return c.request.Context() }

func (c *requestContext) SetContext(ctx context.Context) {
	if ctx != nil {
		c.request = c.request.WithContext(ctx)
	}
}

func (c *requestContext) Deadline() (time.Time, bool) { return c.request.Context().Deadline() }
func (c *requestContext) Done() <-chan struct{}       { return c.request.Context().Done() }
func (c *requestContext) Err() error                  { return c.request.Context().Err() }
func (c *requestContext) Value(key any) any           { return c.request.Context().Value(key) }

func (c *requestContext) Route() *Route {
	return c.route
}

func (c *requestContext) bindRoute(rt *Route, params Params) {
	c.route = rt
	c.params = params
}

func (c *requestContext) Param(name string) string {
	return c.params[name]
}

func (c *requestContext) Params() Params {
	return maps.Clone(c.params)
}

func (c *requestContext) Input() *Input {
	if c.input == nil {
		c.input = newInput(c.request)
	}
	return c.input
}

func (c *requestContext) Query(name string) string {
	return c.request.URL.Query().Get(name)
}

func (c *requestContext) QueryDefault(name, defaultValue string) string {
	return cmp.Or(c.request.URL.Query().Get(name), defaultValue)
}

func (c *requestContext) Form(name string) string {
	return c.request.FormValue(name)
}

func (c *requestContext) Header(name string) string {
	return c.request.Header.Get(name)
}

func (c *requestContext) SetHeader(name, value string) {
	c.response.Header().Set(name, value)
}

func (c *requestContext) ClientIP() string {
	return ClientIP(c.request)
}

// ClientIP returns the first X-Forwarded-For entry of r, or the host part
// of its remote address.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (c *requestContext) JSON(code int, v any) error {
	c.response.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.response.WriteHeader(code)
	return json.NewEncoder(c.response).Encode(v)
}

func (c *requestContext) String(code int, s string) error {
	c.response.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.response.WriteHeader(code)
	_, err := c.response.Write([]byte(s))
	return err
}

func (c *requestContext) NoContent(code int) error {
	c.response.WriteHeader(code)
	return nil
}

func (c *requestContext) Redirect(code int, url string) error {
	http.Redirect(c.response, c.request, url, code)
	return nil
}

func (c *requestContext) Render(code int, component Component) error {
	c.response.Header().Set("Content-Type", "text/html; charset=utf-8")
	c.response.WriteHeader(code)
	return component.Render(c.request.Context(), c.response)
}

func (c *requestContext) View(code int, name string, data any) error {
	fn, ok := c.app.views.Lookup(name)
	if !ok {
		return ViewNotFound(name)
	}
	component, err := fn(c, data)
	if err != nil {
		return err
	}
	return c.Render(code, component)
}

func (c *requestContext) Error(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	err := NewHTTPError(code, message)
	for _, opt := range opts {
		opt(err)
	}
	return err
}

func (c *requestContext) Written() bool {
	return c.responseWriter.Written()
}

func (c *requestContext) Table(name string) *query.Builder {
	return query.New(c.app.db,
		query.WithTimeout(c.app.queryTimeout),
		query.WithLogger(c.app.logger),
	).Table(name)
}

func (c *requestContext) Logger() *slog.Logger {
	return c.app.logger
}

func (c *requestContext) LogDebug(msg string, attrs ...any) { c.log(slog.LevelDebug, msg, attrs) }
func (c *requestContext) LogInfo(msg string, attrs ...any)  { c.log(slog.LevelInfo, msg, attrs) }
func (c *requestContext) LogWarn(msg string, attrs ...any)  { c.log(slog.LevelWarn, msg, attrs) }
func (c *requestContext) LogError(msg string, attrs ...any) { c.log(slog.LevelError, msg, attrs) }

func (c *requestContext) log(level slog.Level, msg string, attrs []any) {
	c.app.logger.Log(c.request.Context(), level, msg, attrs...)
}

func (c *requestContext) Set(key, value any) {
	ctx := context.WithValue(c.request.Context(), key, value)
	c.request = c.request.WithContext(ctx)
}

func (c *requestContext) Get(key any) any {
	return c.request.Context().Value(key)
}

// registerSessionHook persists session changes right before the first
// byte of the response is written.
func (c *requestContext) registerSessionHook() {
	if c.sessionHookRegistered {
		return
	}
	c.sessionHookRegistered = true
	c.responseWriter.OnBeforeWrite(func() {
		if err := c.app.sessionManager.Persist(c.Context(), c.response, c.session); err != nil {
			c.LogError("failed to save session", slog.Any("error", err))
		}
	})
}

func (c *requestContext) Session() (*session.Session, error) {
	sm := c.app.sessionManager
	if sm == nil {
		return nil, session.ErrNotConfigured
	}
	if c.session != nil {
		return c.session, nil
	}

	sess, err := sm.LoadSession(c.Context(), c.request)
	if err != nil && !errors.Is(err, session.ErrNotFound) && !errors.Is(err, session.ErrExpired) {
		return nil, err
	}
	if sess == nil {
		sess, err = sm.NewSession()
		if err != nil {
			return nil, err
		}
	}

	c.session = sess
	c.SetContext(session.WithContext(c.Context(), sess))
	c.registerSessionHook()
	return sess, nil
}

func (c *requestContext) SessionValue(key string) (any, error) {
	sess, err := c.Session()
	if err != nil {
		return nil, err
	}
	v, ok := sess.GetValue(key)
	if !ok {
		return nil, session.ErrNotFound
	}
	return v, nil
}

func (c *requestContext) SetSessionValue(key string, val any) error {
	sess, err := c.Session()
	if err != nil {
		return err
	}
	sess.SetValue(key, val)
	return nil
}

func (c *requestContext) DeleteSessionValue(key string) error {
	sess, err := c.Session()
	if err != nil {
		return err
	}
	sess.DeleteValue(key)
	return nil
}

func (c *requestContext) AuthenticateSession(userID string) error {
	sess, err := c.Session()
	if err != nil {
		return err
	}
	if err := c.app.sessionManager.RotateToken(c.Context(), c.response, sess); err != nil {
		return err
	}
	sess.UserID = &userID
	sess.MarkDirty()
	return nil
}

func (c *requestContext) DestroySession() error {
	sess, err := c.Session()
	if err != nil {
		return err
	}
	if err := c.app.sessionManager.Destroy(c.Context(), c.response, sess); err != nil {
		return err
	}
	fresh, err := c.app.sessionManager.NewSession()
	if err != nil {
		return err
	}
	c.session = fresh
	c.SetContext(session.WithContext(c.Context(), fresh))
	return nil
}
