package cache_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/swallow/pkg/cache"
)

func TestMemory_Capacity(t *testing.T) {
	t.Parallel()

	t.Run("drops the entry expiring soonest", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[int](cache.WithMaxEntries(3), cache.WithCleanupInterval(0))
		defer c.Close()

		ctx := context.Background()
		require.NoError(t, c.Set(ctx, "hour", 1, cache.ExpiresIn(time.Hour)))
		require.NoError(t, c.Set(ctx, "minute", 2, cache.ExpiresIn(time.Minute)))
		require.NoError(t, c.Set(ctx, "day", 3, cache.ExpiresIn(24*time.Hour)))
		require.NoError(t, c.Set(ctx, "new", 4, cache.ExpiresIn(time.Hour)))

		_, err := c.Get(ctx, "minute")
		require.ErrorIs(t, err, cache.ErrNotFound)
		require.Equal(t, 3, c.Len())

		val, err := c.Get(ctx, "new")
		require.NoError(t, err)
		require.Equal(t, 4, val)
	})

	t.Run("entries without expiration go last", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[string](cache.WithMaxEntries(2), cache.WithCleanupInterval(0))
		defer c.Close()

		ctx := context.Background()
		require.NoError(t, c.Set(ctx, "forever", "1", time.Time{}))
		require.NoError(t, c.Set(ctx, "later", "2", cache.ExpiresIn(time.Hour)))
		require.NoError(t, c.Set(ctx, "third", "3", time.Time{}))

		has, err := c.Has(ctx, "forever")
		require.NoError(t, err)
		require.True(t, has)

		has, err = c.Has(ctx, "later")
		require.NoError(t, err)
		require.False(t, has)
	})

	t.Run("overwrite does not count as new entry", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[int](cache.WithMaxEntries(2), cache.WithCleanupInterval(0))
		defer c.Close()

		ctx := context.Background()
		require.NoError(t, c.Set(ctx, "a", 1, time.Time{}))
		require.NoError(t, c.Set(ctx, "b", 2, time.Time{}))
		require.NoError(t, c.Set(ctx, "a", 10, cache.ExpiresIn(time.Minute)))

		val, err := c.Get(ctx, "b")
		require.NoError(t, err)
		require.Equal(t, 2, val)

		val, err = c.Get(ctx, "a")
		require.NoError(t, err)
		require.Equal(t, 10, val)
	})
}

func TestMemory_Sweep(t *testing.T) {
	t.Parallel()

	c := cache.NewMemory[string](cache.WithCleanupInterval(10 * time.Millisecond))
	defer c.Close()

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "short", "value", cache.ExpiresIn(20*time.Millisecond)))
	require.NoError(t, c.Set(ctx, "long", "value", cache.ExpiresIn(time.Minute)))
	require.Equal(t, 2, c.Len())

	require.Eventually(t, func() bool {
		return c.Len() == 1
	}, time.Second, 5*time.Millisecond)

	has, err := c.Has(ctx, "long")
	require.NoError(t, err)
	require.True(t, has)
}

func TestMemory_Clock(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := cache.NewMemory[string](
		cache.WithCleanupInterval(0),
		cache.WithMemoryClock(func() time.Time { return now }),
	)
	defer c.Close()

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "key", "value", now.Add(time.Minute)))

	has, err := c.Has(ctx, "key")
	require.NoError(t, err)
	require.True(t, has)

	now = now.Add(time.Minute)

	has, err = c.Has(ctx, "key")
	require.NoError(t, err)
	require.False(t, has, "entry is absent once now == expiresAt")
}

func TestMemory_Closed(t *testing.T) {
	t.Parallel()

	c := cache.NewMemory[string]()
	require.NoError(t, c.Close())
	require.NoError(t, c.Close(), "close is idempotent")

	ctx := context.Background()
	require.ErrorIs(t, c.Set(ctx, "k", "v", time.Time{}), cache.ErrClosed)
	require.ErrorIs(t, c.Delete(ctx, "k"), cache.ErrClosed)
	require.ErrorIs(t, c.Clear(ctx), cache.ErrClosed)
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	c := cache.NewMemory[int](cache.WithMaxEntries(100))
	defer c.Close()

	ctx := context.Background()
	var wg sync.WaitGroup

	for i := range 50 {
		wg.Go(func() {
			_ = c.Set(ctx, "key", i, time.Time{})
		})
	}
	for range 50 {
		wg.Go(func() {
			_, _ = c.Get(ctx, "key")
		})
	}
	for range 10 {
		wg.Go(func() {
			_ = c.Delete(ctx, "key")
		})
	}

	wg.Wait()
}
