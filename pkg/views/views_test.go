package views_test

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/swallow/pkg/cache"
	"github.com/dmitrymomot/swallow/pkg/views"
)

func TestError(t *testing.T) {
	t.Parallel()

	t.Run("escapes message", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		require.NoError(t, views.Error(404, "<b>Route Not Found</b>", nil).Render(context.Background(), &buf))
		require.Contains(t, buf.String(), "404 &lt;b&gt;Route Not Found&lt;/b&gt;")
		require.NotContains(t, buf.String(), `class="card trace"`)
	})

	t.Run("includes trace", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		require.NoError(t, views.Error(500, "boom", []string{"main.main\n\t/app/main.go:10"}).Render(context.Background(), &buf))
		require.Contains(t, buf.String(), "main.main")
		require.Contains(t, buf.String(), `class="card trace"`)
	})
}

func TestIndex(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, views.Index(views.DefaultFeatures).Render(context.Background(), &buf))
	require.Contains(t, buf.String(), "Welcome to Swallow Framework")
	require.Contains(t, buf.String(), "Routing")
}

func TestDocs(t *testing.T) {
	t.Parallel()

	mem := cache.NewMemory[string]()
	t.Cleanup(func() { _ = mem.Close() })

	docs := views.NewDocs(mem)
	docs.Add("unsafe", []byte("# Title\n\n<script>alert(1)</script>\n\n[x](javascript:alert(1))"))

	ctx := context.Background()

	html, err := docs.HTML(ctx, "index")
	require.NoError(t, err)
	require.Contains(t, html, "<h2")
	require.Contains(t, html, "Routing")

	html, err = docs.HTML(ctx, "unsafe")
	require.NoError(t, err)
	require.NotContains(t, html, "<script>")
	require.NotContains(t, html, "javascript:")

	cached, err := mem.Get(ctx, "docs:unsafe")
	require.NoError(t, err)
	require.Equal(t, html, cached)

	_, err = docs.HTML(ctx, "missing")
	require.ErrorIs(t, err, cache.ErrNotFound)

	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			page, err := docs.Page(ctx, "index")
			if !assert.NoError(t, err) {
				return
			}
			var buf bytes.Buffer
			assert.NoError(t, page.Render(ctx, &buf))
		})
	}
	wg.Wait()
}
