package cache_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/swallow/pkg/cache"
)

func TestSQLite(t *testing.T) {
	t.Parallel()

	newDB := func(t *testing.T) *sql.DB {
		t.Helper()
		db, err := cache.OpenSQLiteDB(":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })
		return db
	}

	t.Run("stores rows in the cache table", func(t *testing.T) {
		t.Parallel()

		db := newDB(t)
		ctx := context.Background()

		c, err := cache.NewSQLite[string](ctx, db, nil)
		require.NoError(t, err)

		expiresAt := time.Now().Add(time.Hour)
		require.NoError(t, c.Set(ctx, "k", "v", expiresAt))
		require.NoError(t, c.Set(ctx, "k", "w", expiresAt), "INSERT OR REPLACE overwrites")

		var (
			n          int
			value      string
			expiration int64
		)
		require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM cache").Scan(&n))
		require.Equal(t, 1, n)
		require.NoError(t, db.QueryRowContext(ctx, "SELECT value, expiration FROM cache WHERE key = 'k'").Scan(&value, &expiration))
		require.Equal(t, `"w"`, value)
		require.Equal(t, expiresAt.UnixMilli(), expiration)
	})

	t.Run("expired read deletes the row", func(t *testing.T) {
		t.Parallel()

		db := newDB(t)
		ctx := context.Background()

		c, err := cache.NewSQLite[string](ctx, db, nil)
		require.NoError(t, err)
		require.NoError(t, c.Set(ctx, "k", "v", time.Now().Add(-time.Second)))

		_, err = c.Get(ctx, "k")
		require.ErrorIs(t, err, cache.ErrNotFound)

		var n int
		require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM cache").Scan(&n))
		require.Zero(t, n)
	})

	t.Run("custom table name", func(t *testing.T) {
		t.Parallel()

		db := newDB(t)
		ctx := context.Background()

		c, err := cache.NewSQLite[int](ctx, db, nil, cache.WithTable("kv"))
		require.NoError(t, err)
		require.NoError(t, c.Set(ctx, "k", 1, time.Time{}))

		var n int
		require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM kv").Scan(&n))
		require.Equal(t, 1, n)
	})

	t.Run("rejects unsafe table name", func(t *testing.T) {
		t.Parallel()

		_, err := cache.NewSQLite[int](context.Background(), newDB(t), nil, cache.WithTable("kv; DROP TABLE x"))
		require.Error(t, err)
	})
}
