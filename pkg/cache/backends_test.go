package cache_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/swallow/pkg/cache"
	"github.com/dmitrymomot/swallow/pkg/session"
)

type profile struct {
	Name  string   `json:"name"`
	Tags  []string `json:"tags"`
	Score int      `json:"score"`
}

// newBackends returns one fresh instance of every backend.
func newBackends(t *testing.T) map[string]cache.Cache[profile] {
	t.Helper()

	ctx := context.Background()

	db, err := cache.OpenSQLiteDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	sqliteCache, err := cache.NewSQLite[profile](ctx, db, nil)
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sess := session.New("sid", "token", time.Now().Add(time.Hour))

	return map[string]cache.Cache[profile]{
		"memory": cache.NewMemory[profile](cache.WithCleanupInterval(0)),
		"file":   cache.NewFile[profile](filepath.Join(t.TempDir(), "cache.json"), nil),
		"sqlite": sqliteCache,
		"session": cache.NewSession[profile](func(context.Context) (cache.SessionValues, error) {
			return sess, nil
		}, nil, ""),
		"redis": cache.NewRedis[profile](client, nil, cache.WithPrefix("test:")),
	}
}

func TestBackends(t *testing.T) {
	t.Parallel()

	for name, c := range newBackends(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			defer c.Close()

			ctx := context.Background()
			alice := profile{Name: "alice", Tags: []string{"admin"}, Score: 7}

			t.Run("miss returns ErrNotFound", func(t *testing.T) {
				_, err := c.Get(ctx, "missing")
				require.ErrorIs(t, err, cache.ErrNotFound)

				has, err := c.Has(ctx, "missing")
				require.NoError(t, err)
				require.False(t, has)
			})

			t.Run("set then get", func(t *testing.T) {
				require.NoError(t, c.Set(ctx, "alice", alice, cache.ExpiresIn(time.Minute)))

				got, err := c.Get(ctx, "alice")
				require.NoError(t, err)
				require.Equal(t, alice, got)

				has, err := c.Has(ctx, "alice")
				require.NoError(t, err)
				require.True(t, has)
			})

			t.Run("zero expiration never expires", func(t *testing.T) {
				require.NoError(t, c.Set(ctx, "forever", alice, time.Time{}))

				got, err := c.Get(ctx, "forever")
				require.NoError(t, err)
				require.Equal(t, alice, got)
			})

			t.Run("overwrite replaces value", func(t *testing.T) {
				require.NoError(t, c.Set(ctx, "score", profile{Score: 1}, time.Time{}))
				require.NoError(t, c.Set(ctx, "score", profile{Score: 2}, time.Time{}))

				got, err := c.Get(ctx, "score")
				require.NoError(t, err)
				require.Equal(t, 2, got.Score)
			})

			t.Run("expired entry is absent and lazily deleted", func(t *testing.T) {
				require.NoError(t, c.Set(ctx, "stale", alice, time.Now().Add(-time.Second)))

				_, err := c.Get(ctx, "stale")
				require.ErrorIs(t, err, cache.ErrNotFound)

				has, err := c.Has(ctx, "stale")
				require.NoError(t, err)
				require.False(t, has)
			})

			t.Run("delete removes key", func(t *testing.T) {
				require.NoError(t, c.Set(ctx, "gone", alice, time.Time{}))
				require.NoError(t, c.Delete(ctx, "gone"))
				require.NoError(t, c.Delete(ctx, "gone"), "deleting a missing key is not an error")

				has, err := c.Has(ctx, "gone")
				require.NoError(t, err)
				require.False(t, has)
			})

			t.Run("clear removes everything", func(t *testing.T) {
				require.NoError(t, c.Set(ctx, "a", alice, time.Time{}))
				require.NoError(t, c.Set(ctx, "b", alice, time.Time{}))
				require.NoError(t, c.Clear(ctx))

				for _, k := range []string{"a", "b", "alice", "forever"} {
					has, err := c.Has(ctx, k)
					require.NoError(t, err)
					require.False(t, has, k)
				}
			})
		})
	}
}
