package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/swallow/pkg/cache"
)

func newMiniredis(t *testing.T) (*miniredis.Miniredis, goredis.UniversalClient) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

func TestRedis(t *testing.T) {
	t.Parallel()

	t.Run("sets TTL from expiration", func(t *testing.T) {
		t.Parallel()

		mr, client := newMiniredis(t)
		c := cache.NewRedis[string](client, nil, cache.WithPrefix("app:"))
		ctx := context.Background()

		require.NoError(t, c.Set(ctx, "k", "v", time.Now().Add(time.Minute)))
		require.True(t, mr.Exists("app:k"))
		require.InDelta(t, time.Minute.Seconds(), mr.TTL("app:k").Seconds(), 2)

		mr.FastForward(time.Minute + time.Second)

		has, err := c.Has(ctx, "k")
		require.NoError(t, err)
		require.False(t, has)
	})

	t.Run("zero expiration persists", func(t *testing.T) {
		t.Parallel()

		mr, client := newMiniredis(t)
		c := cache.NewRedis[string](client, nil)

		require.NoError(t, c.Set(context.Background(), "k", "v", time.Time{}))
		require.Zero(t, mr.TTL("k"))
	})

	t.Run("overwrite without expiration clears it", func(t *testing.T) {
		t.Parallel()

		mr, client := newMiniredis(t)
		c := cache.NewRedis[string](client, nil)
		ctx := context.Background()

		require.NoError(t, c.Set(ctx, "k", "v", time.Now().Add(time.Minute)))
		require.NotZero(t, mr.TTL("k"))
		require.NoError(t, c.Set(ctx, "k", "w", time.Time{}))
		require.Zero(t, mr.TTL("k"))
	})

	t.Run("past expiration removes the key", func(t *testing.T) {
		t.Parallel()

		mr, client := newMiniredis(t)
		c := cache.NewRedis[string](client, nil)
		ctx := context.Background()

		require.NoError(t, c.Set(ctx, "k", "v", time.Time{}))
		require.NoError(t, c.Set(ctx, "k", "w", time.Now().Add(-time.Second)))
		require.False(t, mr.Exists("k"))
	})

	t.Run("clear with prefix keeps foreign keys", func(t *testing.T) {
		t.Parallel()

		mr, client := newMiniredis(t)
		require.NoError(t, mr.Set("other", "x"))

		c := cache.NewRedis[string](client, nil, cache.WithPrefix("app:"))
		ctx := context.Background()
		require.NoError(t, c.Set(ctx, "a", "1", time.Time{}))
		require.NoError(t, c.Set(ctx, "b", "2", time.Time{}))
		require.NoError(t, c.Clear(ctx))

		require.False(t, mr.Exists("app:a"))
		require.False(t, mr.Exists("app:b"))
		require.True(t, mr.Exists("other"))
	})

	t.Run("custom marshaler", func(t *testing.T) {
		t.Parallel()

		mr, client := newMiniredis(t)
		c := cache.NewRedis[string](client, rawPrefixMarshaler{})
		ctx := context.Background()

		require.NoError(t, c.Set(ctx, "k", "v", time.Time{}))
		raw, err := mr.Get("k")
		require.NoError(t, err)
		require.Equal(t, "raw:v", raw)

		got, err := c.Get(ctx, "k")
		require.NoError(t, err)
		require.Equal(t, "v", got)
	})
}

type rawPrefixMarshaler struct{}

func (rawPrefixMarshaler) Marshal(v string) ([]byte, error) { return []byte("raw:" + v), nil }

func (rawPrefixMarshaler) Unmarshal(data []byte) (string, error) {
	return string(data[len("raw:"):]), nil
}
