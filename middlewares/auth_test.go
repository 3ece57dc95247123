package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/swallow/internal"
	"github.com/dmitrymomot/swallow/middlewares"
)

func TestAuth(t *testing.T) {
	t.Parallel()

	res := serve(t, httptest.NewRequest(http.MethodGet, "/?id=7", nil), middlewares.Auth(), func(c internal.Context) error {
		require.Equal(t, middlewares.StubUserID, c.Input().String("id"))
		require.Equal(t, "1453", c.Input().String("name"))
		return ok(c)
	})
	require.NoError(t, res.err)
}

func TestAuthorize(t *testing.T) {
	t.Parallel()

	isStubUser := func(c internal.Context) bool {
		return c.Input().String("id") == middlewares.StubUserID
	}

	tests := []struct {
		name    string
		mw      internal.Middleware
		message string
		code    int
	}{
		{name: "allowed", mw: middlewares.Authorize(isStubUser, ""), code: http.StatusOK},
		{name: "denied with default message", mw: middlewares.Authorize(func(internal.Context) bool { return false }, ""),
			code: http.StatusUnauthorized, message: internal.DefaultAuthorizationMessage},
		{name: "denied with custom message", mw: middlewares.Authorize(func(internal.Context) bool { return false }, "admins only"),
			code: http.StatusUnauthorized, message: "admins only"},
		{name: "nil func denies", mw: middlewares.Authorize(nil, ""),
			code: http.StatusUnauthorized, message: internal.DefaultAuthorizationMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := jsonRequest(http.MethodGet, "/")
			app := internal.New(internal.WithRoutes(func(r internal.Router) {
				r.GET("/", ok, middlewares.Auth(), tt.mw)
			}))

			w := serveApp(app, req)
			require.Equal(t, tt.code, w.Code)
			if tt.code == http.StatusOK {
				return
			}

			body := decodeFault(t, w)
			require.Equal(t, "Unauthorized", body.Message)

			res := serve(t, jsonRequest(http.MethodGet, "/"), tt.mw, ok)
			require.ErrorIs(t, res.err, internal.ErrAuthorizationDenied)
			require.Equal(t, tt.message, internal.AsHTTPError(res.err).Message)
		})
	}
}
