package middlewares_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/swallow/internal"
	"github.com/dmitrymomot/swallow/middlewares"
	"github.com/dmitrymomot/swallow/pkg/logger"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	t.Run("generates an id when none is sent", func(t *testing.T) {
		t.Parallel()

		var seen string
		res := serve(t, httptest.NewRequest(http.MethodGet, "/", nil), middlewares.RequestID(), func(c internal.Context) error {
			seen = middlewares.GetRequestID(c)
			return ok(c)
		})

		require.Len(t, seen, 26)
		require.Equal(t, seen, res.rec.Header().Get("X-Request-ID"))
	})

	t.Run("keeps an upstream id", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Correlation-ID", "corr-1")

		res := serve(t, req, middlewares.RequestID(), ok)
		require.Equal(t, "corr-1", res.rec.Header().Get("X-Request-ID"))
	})

	t.Run("custom headers in priority order", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Custom-ID", "custom-123")
		req.Header.Set("X-Trace-ID", "trace-456")

		mw := middlewares.RequestID(
			middlewares.WithRequestIDHeaders("X-Trace-ID", "X-Custom-ID"),
			middlewares.WithRequestIDResponseHeader("X-Trace-ID"),
		)
		res := serve(t, req, mw, ok)
		require.Equal(t, "trace-456", res.rec.Header().Get("X-Trace-ID"))
		require.Empty(t, res.rec.Header().Get("X-Request-ID"))
	})

	t.Run("custom generator", func(t *testing.T) {
		t.Parallel()

		mw := middlewares.RequestID(middlewares.WithRequestIDGenerator(func() string { return "fixed" }))
		res := serve(t, httptest.NewRequest(http.MethodGet, "/", nil), mw, ok)
		require.Equal(t, "fixed", res.rec.Header().Get("X-Request-ID"))
	})

	t.Run("attaches the id to faults", func(t *testing.T) {
		t.Parallel()

		mw := middlewares.RequestID(middlewares.WithRequestIDGenerator(func() string { return "req-7" }))
		res := serve(t, jsonRequest(http.MethodGet, "/"), mw, func(c internal.Context) error {
			return internal.ErrNotFound("missing")
		})

		he := internal.AsHTTPError(res.err)
		require.NotNil(t, he)
		require.Equal(t, "req-7", he.RequestID)
		require.Equal(t, http.StatusNotFound, res.rec.Code)
	})

	t.Run("GetRequestID without middleware", func(t *testing.T) {
		t.Parallel()

		serve(t, httptest.NewRequest(http.MethodGet, "/", nil), nil, func(c internal.Context) error {
			require.Empty(t, middlewares.GetRequestID(c))
			return ok(c)
		})
	})
}

func TestRequestIDExtractor(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.Config{Format: logger.FormatJSON},
		logger.WithOutput(&buf),
		logger.WithExtractors(middlewares.RequestIDExtractor()),
	)

	mw := middlewares.RequestID(middlewares.WithRequestIDGenerator(func() string { return "req-42" }))
	serve(t, httptest.NewRequest(http.MethodGet, "/", nil), mw, func(c internal.Context) error {
		c.LogInfo("handled")
		return ok(c)
	}, internal.WithLogger(log))

	require.Contains(t, buf.String(), `"request_id":"req-42"`)
	require.Contains(t, buf.String(), `"msg":"handled"`)
}
