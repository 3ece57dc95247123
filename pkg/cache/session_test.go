package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/swallow/pkg/cache"
	"github.com/dmitrymomot/swallow/pkg/session"
)

func TestSession(t *testing.T) {
	t.Parallel()

	t.Run("clear keeps unrelated session values", func(t *testing.T) {
		t.Parallel()

		sess := session.New("sid", "token", time.Now().Add(time.Hour))
		sess.SetValue("user_id", "42")

		c := cache.NewSession[string](func(context.Context) (cache.SessionValues, error) {
			return sess, nil
		}, nil, "")

		ctx := context.Background()
		require.NoError(t, c.Set(ctx, "greeting", "hello", time.Time{}))
		_, ok := sess.GetValue(cache.DefaultSessionPrefix + "greeting")
		require.True(t, ok)

		require.NoError(t, c.Clear(ctx))

		_, ok = sess.GetValue(cache.DefaultSessionPrefix + "greeting")
		require.False(t, ok)
		v, ok := sess.GetValue("user_id")
		require.True(t, ok)
		require.Equal(t, "42", v)
	})

	t.Run("writes mark the session dirty", func(t *testing.T) {
		t.Parallel()

		sess := session.New("sid", "token", time.Now().Add(time.Hour))
		require.False(t, sess.IsDirty())

		c := cache.NewSession[int](func(context.Context) (cache.SessionValues, error) {
			return sess, nil
		}, nil, "c:")
		require.NoError(t, c.Set(context.Background(), "n", 1, time.Time{}))
		require.True(t, sess.IsDirty())
	})

	t.Run("fails without session", func(t *testing.T) {
		t.Parallel()

		c := cache.NewSession[int](func(context.Context) (cache.SessionValues, error) {
			return nil, errors.New("no cookie")
		}, nil, "")

		_, err := c.Get(context.Background(), "n")
		require.ErrorIs(t, err, cache.ErrNoSession)

		err = c.Set(context.Background(), "n", 1, time.Time{})
		require.ErrorIs(t, err, cache.ErrNoSession)
	})
}
