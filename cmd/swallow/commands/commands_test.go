package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/swallow"
	"github.com/dmitrymomot/swallow/pkg/config"
	"github.com/dmitrymomot/swallow/pkg/logger"
)

func loadConfig(t *testing.T, env map[string]string) config.Config {
	t.Helper()

	cfg, _, err := config.Load(context.Background(),
		config.WithDotEnv(""),
		config.WithEnviron(env),
	)
	require.NoError(t, err)
	return cfg
}

func TestRoutesCommand(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	cmd := newRootCmd("test")
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"routes", "--env-file", ""})

	require.NoError(t, cmd.Execute())

	var routes [][]string
	for line := range strings.Lines(out.String()) {
		routes = append(routes, strings.Fields(line))
	}
	require.Equal(t, [][]string{
		{"METHOD", "PATTERN"},
		{"GET", "/"},
		{"GET", "/user/{user}/about"},
		{"GET", "/docs"},
		{"GET", "/jobs"},
		{"GET", "/welcome"},
	}, routes)
}

func TestNewServer(t *testing.T) {
	t.Parallel()

	t.Run("rate limits clients", func(t *testing.T) {
		t.Parallel()

		cfg := loadConfig(t, map[string]string{
			"SWIFT_CACHE_DRIVER": "memory",
			"API_RATE_LIMIT":     "1",
		})
		s, err := newServer(context.Background(), cfg, logger.NewNope())
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		s.app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/welcome", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))
		require.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

		rec = httptest.NewRecorder()
		s.app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/welcome", nil))
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.NotEmpty(t, rec.Header().Get("Retry-After"))
	})

	t.Run("unknown cache driver answers every request", func(t *testing.T) {
		t.Parallel()

		cfg := loadConfig(t, map[string]string{"SWIFT_CACHE_DRIVER": "bogus"})
		s, err := newServer(context.Background(), cfg, logger.NewNope())
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/welcome", nil)
		req.Header.Set("Accept", "application/json")
		rec := httptest.NewRecorder()
		s.app.ServeHTTP(rec, req)

		require.Equal(t, swallow.StatusEnvPropertyInvalid, rec.Code)
		var body struct {
			Message    string `json:"message"`
			StatusCode int    `json:"statusCode"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, swallow.StatusEnvPropertyInvalid, body.StatusCode)
		require.Contains(t, body.Message, "unknown driver")
	})

	t.Run("serves health and metrics", func(t *testing.T) {
		t.Parallel()

		cfg := loadConfig(t, map[string]string{"SWIFT_CACHE_DRIVER": "memory"})
		s, err := newServer(context.Background(), cfg, logger.NewNope())
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		s.app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		s.app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/welcome", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		s.app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), `swallow_cache_operations_total{backend="memory",operation="get",result="miss"} 1`)
		require.Contains(t, rec.Body.String(), "swallow_http_requests_total")
	})
}
