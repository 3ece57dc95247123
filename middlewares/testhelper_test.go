package middlewares_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/swallow/internal"
)

// result captures what a request produced.
type result struct {
	rec *httptest.ResponseRecorder
	err error
}

// errorRecorder remembers the last error handed to the error handler and
// then answers it with the default exception handler.
type errorRecorder struct {
	mu   sync.Mutex
	err  error
	next internal.ErrorHandler
}

func (e *errorRecorder) handle(c internal.Context, err error) error {
	e.mu.Lock()
	e.err = err
	e.mu.Unlock()
	return e.next(c, err)
}

// serve sends req to an app with mw installed globally and h registered
// for the request's method and path.
func serve(t *testing.T, req *http.Request, mw internal.Middleware, h internal.HandlerFunc, opts ...internal.Option) result {
	t.Helper()

	errs := &errorRecorder{next: internal.NewExceptionHandler()}
	opts = append(opts,
		internal.WithErrorHandler(errs.handle),
		internal.WithRoutes(func(r internal.Router) {
			r.Handle(req.Method, req.URL.Path, h)
		}),
	)
	if mw != nil {
		opts = append(opts, internal.WithMiddleware(mw))
	}
	app := internal.New(opts...)

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	errs.mu.Lock()
	defer errs.mu.Unlock()
	return result{rec: rec, err: errs.err}
}

func ok(c internal.Context) error {
	return c.String(http.StatusOK, "ok")
}

func jsonRequest(method, target string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set("Accept", "application/json")
	return req
}

type faultBody struct {
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

func decodeFault(t *testing.T, rec *httptest.ResponseRecorder) faultBody {
	t.Helper()

	var body faultBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func serveApp(app *internal.App, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}
