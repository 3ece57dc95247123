package query_test

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/dmitrymomot/swallow/pkg/query"
)

func newJobsDB(t *testing.T, n int) query.Executor {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE jobs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		level INTEGER,
		salary REAL,
		logo BLOB
	)`)
	require.NoError(t, err)

	exec := query.SQL(db, query.SQLite)
	for i := 1; i <= n; i++ {
		_, err := query.New(exec).Table("jobs").Insert(context.Background(), map[string]any{
			"title": fmt.Sprintf("job %d", i),
			"level": i % 3,
		})
		require.NoError(t, err)
	}

	return exec
}

func ids(rows []query.Row) []int64 {
	out := make([]int64, 0, len(rows))
	for _, r := range rows {
		id, _ := query.ToInt64(r["id"])
		out = append(out, id)
	}
	return out
}

func TestSQLite_InsertSelectRoundTrip(t *testing.T) {
	t.Parallel()

	exec := newJobsDB(t, 0)
	ctx := context.Background()

	data := map[string]any{
		"title":  "Backend engineer",
		"level":  int64(2),
		"salary": 4200.5,
		"logo":   []byte{0x89, 0x50, 0x4e, 0x47},
	}
	id, err := query.New(exec).Table("jobs").Insert(ctx, data)
	require.NoError(t, err)
	require.Equal(t, int64(1), id)

	row, err := query.New(exec).Table("jobs").Where("id", "=", id).First(ctx)
	require.NoError(t, err)
	for col, want := range data {
		require.Equal(t, want, row[col], col)
	}
}

func TestSQLite_First(t *testing.T) {
	t.Parallel()

	exec := newJobsDB(t, 3)
	ctx := context.Background()

	row, err := query.New(exec).Table("jobs").OrderBy("id", "DESC").First(ctx)
	require.NoError(t, err)
	require.Equal(t, "job 3", row["title"])

	_, err = query.New(exec).Table("jobs").Where("title", "=", "nope").First(ctx)
	require.ErrorIs(t, err, query.ErrNoRows)
}

func TestSQLite_Get(t *testing.T) {
	t.Parallel()

	exec := newJobsDB(t, 6)
	ctx := context.Background()

	rows, err := query.New(exec).Table("jobs").
		Select("id", "title").
		Where("level", "=", 0).
		OrderBy("id", "DESC").
		Get(ctx)
	require.NoError(t, err)
	require.Equal(t, []int64{6, 3}, ids(rows))
	require.Len(t, rows[0], 2)

	rows, err = query.New(exec).Table("jobs").Where("id", "IN", []int64{2, 4, 99}).Get(ctx)
	require.NoError(t, err)
	require.Equal(t, []int64{2, 4}, ids(rows))

	rows, err = query.New(exec).Table("jobs").Where("salary", "IS", nil).Limit(2).Offset(1).Get(ctx)
	require.NoError(t, err)
	require.Equal(t, []int64{2, 3}, ids(rows))

	rows, err = query.New(exec).Table("jobs").Where("title", "=", "missing").Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, rows)
	require.Empty(t, rows)
}

func TestSQLite_UpdateDelete(t *testing.T) {
	t.Parallel()

	exec := newJobsDB(t, 5)
	ctx := context.Background()

	n, err := query.New(exec).Table("jobs").
		Where("level", "=", 1).
		Update(ctx, map[string]any{"title": "updated"})
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	rows, err := query.New(exec).Table("jobs").Where("title", "=", "updated").Get(ctx)
	require.NoError(t, err)
	require.Equal(t, []int64{1, 4}, ids(rows))

	n, err = query.New(exec).Table("jobs").Where("id", ">", 3).Delete(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	n, err = query.New(exec).Table("jobs").Delete(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(3), n, "delete without predicates empties the table")
}

func TestSQLite_Paginate(t *testing.T) {
	t.Parallel()

	t.Run("empty table returns empty page", func(t *testing.T) {
		t.Parallel()

		rows, err := query.New(newJobsDB(t, 0)).Table("jobs").Paginate(context.Background(), 10, 1)
		require.NoError(t, err)
		require.Empty(t, rows)
	})

	t.Run("offset is (page-1)*perPage", func(t *testing.T) {
		t.Parallel()

		exec := newJobsDB(t, 7)
		rows, err := query.New(exec).Table("jobs").OrderBy("id", "ASC").Paginate(context.Background(), 3, 2)
		require.NoError(t, err)
		require.Equal(t, []int64{4, 5, 6}, ids(rows))

		rows, err = query.New(exec).Table("jobs").OrderBy("id", "ASC").Paginate(context.Background(), 3, 3)
		require.NoError(t, err)
		require.Equal(t, []int64{7}, ids(rows))
	})

	t.Run("non-positive page is a validation fault", func(t *testing.T) {
		t.Parallel()

		exec := newJobsDB(t, 1)
		for _, page := range []int{0, -1} {
			_, err := query.New(exec).Table("jobs").Paginate(context.Background(), 10, page)
			require.ErrorIs(t, err, query.ErrInvalidPage)
			require.True(t, query.IsValidation(err))
		}
	})

	t.Run("page whose offset overflows is a validation fault", func(t *testing.T) {
		t.Parallel()

		exec := newJobsDB(t, 5)
		page := query.PageFromRequest(httptest.NewRequest("GET", "/jobs?page=4611686018427387905", nil), 1)
		rows, err := query.New(exec).Table("jobs").OrderBy("id", "ASC").Paginate(context.Background(), 4, page)
		require.ErrorIs(t, err, query.ErrInvalidPage)
		require.Nil(t, rows)

		_, err = query.New(exec).Table("jobs").Paginate(context.Background(), 2, math.MaxInt)
		require.ErrorIs(t, err, query.ErrInvalidPage)
	})
}

func TestPageFromRequest(t *testing.T) {
	t.Parallel()

	require.Equal(t, 1, query.PageFromRequest(httptest.NewRequest("GET", "/jobs", nil), 1))
	require.Equal(t, 3, query.PageFromRequest(httptest.NewRequest("GET", "/jobs?page=3", nil), 1))
	require.Equal(t, -2, query.PageFromRequest(httptest.NewRequest("GET", "/jobs?page=-2", nil), 1))
	require.Equal(t, 0, query.PageFromRequest(httptest.NewRequest("GET", "/jobs?page=abc", nil), 1))
}

func TestSQLite_CursorPaginate(t *testing.T) {
	t.Parallel()

	exec := newJobsDB(t, 5)
	ctx := context.Background()

	page := func(t *testing.T, rawURL string) query.Page[query.Row] {
		t.Helper()
		u, err := url.Parse(rawURL)
		require.NoError(t, err)
		p, err := query.New(exec).Table("jobs").CursorPaginate(ctx, 2, u)
		require.NoError(t, err)
		return p
	}

	t.Run("walks forward through all rows", func(t *testing.T) {
		t.Parallel()

		p1 := page(t, "http://example.com/jobs")
		require.Equal(t, []int64{1, 2}, ids(p1.Data))
		require.True(t, p1.HasNextPage)
		require.False(t, p1.HasPrevPage)
		require.Equal(t, int64(2), *p1.NextCursor)
		require.Equal(t, "http://example.com/jobs?cursor=2", *p1.NextPageURL)
		require.Nil(t, p1.PrevPageURL)

		p2 := page(t, *p1.NextPageURL)
		require.Equal(t, []int64{3, 4}, ids(p2.Data))
		require.True(t, p2.HasNextPage)
		require.True(t, p2.HasPrevPage)
		require.Equal(t, int64(4), *p2.NextCursor)
		require.Equal(t, int64(0), *p2.PrevCursor, "first id 3 minus perPage+1")

		p3 := page(t, *p2.NextPageURL)
		require.Equal(t, []int64{5}, ids(p3.Data))
		require.False(t, p3.HasNextPage)
		require.Nil(t, p3.NextPageURL)
		require.True(t, p3.HasPrevPage)
		require.Equal(t, "http://example.com/jobs?cursor=2", *p3.PrevPageURL)
	})

	t.Run("keeps other query parameters and strips page", func(t *testing.T) {
		t.Parallel()

		p := page(t, "https://example.com/jobs?sort=new&page=4&cursor=1")
		require.Equal(t, []int64{2, 3}, ids(p.Data))
		require.Equal(t, "https://example.com/jobs?sort=new&cursor=3", *p.NextPageURL)
		require.Equal(t, "https://example.com/jobs?sort=new&cursor=-1", *p.PrevPageURL)
	})

	t.Run("cursor past the end", func(t *testing.T) {
		t.Parallel()

		p := page(t, "/jobs?cursor=5")
		require.Empty(t, p.Data)
		require.False(t, p.HasNextPage)
		require.False(t, p.HasPrevPage)
	})

	t.Run("orders by id even when the store would not", func(t *testing.T) {
		t.Parallel()

		u, _ := url.Parse("/jobs")
		p, err := query.New(exec).Table("jobs").OrderBy("title", "DESC").CursorPaginate(ctx, 5, u)
		require.NoError(t, err)
		require.Equal(t, []int64{1, 2, 3, 4, 5}, ids(p.Data))
	})

	t.Run("invalid cursor", func(t *testing.T) {
		t.Parallel()

		u, _ := url.Parse("/jobs?cursor=abc")
		_, err := query.New(exec).Table("jobs").CursorPaginate(ctx, 2, u)
		require.ErrorIs(t, err, query.ErrInvalidCursor)
	})
}

func TestRequestURL(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("GET", "http://api.example.com/jobs?cursor=2", nil)
	u := query.RequestURL(r)
	require.Equal(t, "http://api.example.com/jobs?cursor=2", u.String())

	r.Header.Set("X-Forwarded-Proto", "https")
	require.Equal(t, "https", query.RequestURL(r).Scheme)
}
