package app_test

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gavv/httpexpect/v2"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/dmitrymomot/swallow"
	"github.com/dmitrymomot/swallow/app"
	"github.com/dmitrymomot/swallow/app/models"
	"github.com/dmitrymomot/swallow/pkg/cache"
	"github.com/dmitrymomot/swallow/pkg/query"
	"github.com/dmitrymomot/swallow/pkg/views"
)

func newJobBoard(t *testing.T, jobs int) query.Executor {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE jobs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		company TEXT,
		created_at TEXT
	)`)
	require.NoError(t, err)

	exec := query.SQL(db, query.SQLite)
	posted := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for i := 1; i <= jobs; i++ {
		_, err := query.New(exec).Table(models.JobsTable).Insert(context.Background(), map[string]any{
			"title":      fmt.Sprintf("Go developer #%d", i),
			"company":    "Swallow Inc.",
			"created_at": posted.Add(time.Duration(i) * time.Hour).Format(time.RFC3339),
		})
		require.NoError(t, err)
	}
	return exec
}

func newExpect(t *testing.T, jobs int) *httpexpect.Expect {
	t.Helper()

	docs := cache.NewMemory[string]()
	t.Cleanup(func() { _ = docs.Close() })

	opts, err := app.Options(app.Config{
		DB:      newJobBoard(t, jobs),
		Docs:    views.NewDocs(docs),
		PerPage: 10,
	})
	require.NoError(t, err)

	server := httptest.NewServer(swallow.New(opts...))
	t.Cleanup(server.Close)

	return httpexpect.WithConfig(httpexpect.Config{
		BaseURL:  server.URL,
		Reporter: httpexpect.NewRequireReporter(t),
		Client:   server.Client(),
	})
}

func TestJobBoard(t *testing.T) {
	t.Parallel()

	e := newExpect(t, 25)

	t.Run("offset pages", func(t *testing.T) {
		e.GET("/").Expect().
			Status(http.StatusOK).
			JSON().Object().
			HasValue("page", 1).
			HasValue("perPage", 10).
			Value("data").Array().Length().IsEqual(10)

		e.GET("/").WithQuery("page", 3).Expect().
			Status(http.StatusOK).
			JSON().Object().
			Value("data").Array().Length().IsEqual(5)

		e.GET("/").WithQuery("page", 4).Expect().
			Status(http.StatusOK).
			JSON().Object().
			Value("data").Array().IsEmpty()
	})

	t.Run("invalid page", func(t *testing.T) {
		e.GET("/").WithQuery("page", "zero").WithHeader("Accept", "application/json").Expect().
			Status(http.StatusBadRequest).
			JSON().Object().
			HasValue("statusCode", http.StatusBadRequest)
	})

	t.Run("user route shares the index action", func(t *testing.T) {
		e.GET("/user/{user}/about", "ada").Expect().
			Status(http.StatusOK).
			JSON().Object().
			Value("data").Array().Length().IsEqual(10)
	})

	t.Run("cursor pages", func(t *testing.T) {
		first := e.GET("/jobs").Expect().
			Status(http.StatusOK).
			JSON().Object()
		first.HasValue("hasNextPage", true).HasValue("hasPrevPage", false)
		first.Value("prevPageUrl").IsNull()
		first.Value("nextPageUrl").String().HasSuffix("/jobs?cursor=10")
		first.Value("data").Array().Length().IsEqual(10)
		first.Value("data").Array().Value(0).Object().
			HasValue("id", 1).
			HasValue("title", "Go developer #1").
			HasValue("company", "Swallow Inc.")

		last := e.GET("/jobs").WithQuery("cursor", 20).Expect().
			Status(http.StatusOK).
			JSON().Object()
		last.HasValue("hasNextPage", false).HasValue("hasPrevPage", true)
		last.Value("nextPageUrl").IsNull()
		last.Value("prevPageUrl").String().HasSuffix("/jobs?cursor=10")
		last.Value("data").Array().Length().IsEqual(5)
	})

	t.Run("pages", func(t *testing.T) {
		e.GET("/docs").Expect().
			Status(http.StatusOK).
			ContentType("text/html").
			Body().Contains("Swallow Framework Docs")

		e.GET("/welcome").Expect().
			Status(http.StatusOK).
			Body().Contains("Features")
	})

	t.Run("faults", func(t *testing.T) {
		e.GET("/nowhere").WithHeader("Accept", "application/json").Expect().
			Status(http.StatusNotFound).
			JSON().Object().
			IsEqual(map[string]any{"statusCode": 404, "message": "Route Not Found"})

		e.GET("/nowhere").Expect().
			Status(http.StatusNotFound).
			ContentType("text/html").
			Body().Contains("404 Route Not Found")

		e.POST("/jobs").WithHeader("Accept", "application/json").Expect().
			Status(http.StatusMethodNotAllowed).
			Header("Allow").IsEqual(http.MethodGet)

		e.GET("/").WithHeader("Accept", "multipart/form-data").WithQuery("page", -1).Expect().
			Status(http.StatusBadRequest).
			ContentType("multipart/form-data").
			Body().IsEmpty()
	})
}
