package id_test

import (
	"regexp"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/swallow/pkg/id"
)

func TestNewULID(t *testing.T) {
	t.Parallel()

	t.Run("valid length and alphabet", func(t *testing.T) {
		t.Parallel()

		ulid := id.NewULID()
		require.Len(t, ulid, 26)
		require.Regexp(t, regexp.MustCompile(`^[0-7][0-9A-HJ-NP-TV-Z]{25}$`), ulid)
	})

	t.Run("unique under concurrency", func(t *testing.T) {
		t.Parallel()

		const workers, perWorker = 8, 200
		var (
			mu   sync.Mutex
			seen = make(map[string]struct{}, workers*perWorker)
			wg   sync.WaitGroup
		)
		for range workers {
			wg.Go(func() {
				for range perWorker {
					v := id.NewULID()
					mu.Lock()
					seen[v] = struct{}{}
					mu.Unlock()
				}
			})
		}
		wg.Wait()
		require.Len(t, seen, workers*perWorker)
	})

	t.Run("sortable by time", func(t *testing.T) {
		t.Parallel()

		ids := make([]string, 5)
		for i := range ids {
			ids[i] = id.NewULID()
			time.Sleep(2 * time.Millisecond)
		}
		require.True(t, slices.IsSorted(ids))
	})
}

func TestNewToken(t *testing.T) {
	t.Parallel()

	a, err := id.NewToken()
	require.NoError(t, err)
	b, err := id.NewToken()
	require.NoError(t, err)

	require.Len(t, a, 43)
	require.NotEqual(t, a, b)
	require.Regexp(t, `^[A-Za-z0-9_-]+$`, a)
}
