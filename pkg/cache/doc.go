// Package cache provides a generic Cache interface with interchangeable backends.
//
// Every backend implements the same [Cache] interface and honors the same
// expiration semantics: an entry stored with a non-zero expiresAt is
// logically absent once now >= expiresAt, and reading it deletes it.
//
// # Backends
//
//   - [Memory]: in-process LRU map with a janitor goroutine
//   - [File]: a single JSON document on disk ({key: {value, expiration}})
//   - [SQLite]: an embedded table cache(key, value, expiration)
//   - [Session]: values stored on the current request session
//   - [Redis]: a go-redis UniversalClient
//
// # Selecting a backend
//
// [Open] picks the backend named by [Config].Driver. Backends that need
// collaborators receive them as options:
//
//	c, err := cache.Open[ratelimit.Window](ctx, cfg.Cache,
//	    cache.WithRedisClient(client),
//	    cache.WithSessionResolver(sessionValues),
//	)
//	if errors.Is(err, cache.ErrUnknownDriver) {
//	    // misconfigured environment
//	}
//
// # Cache Stampede Prevention
//
// [Loader] computes missing values once per key across concurrent callers:
//
//	docs := cache.NewLoader(c)
//	html, err := docs.GetOrSet(ctx, "docs:index", func(ctx context.Context) (string, time.Time, error) {
//	    out, err := render(ctx)
//	    return out, cache.ExpiresIn(10 * time.Minute), err
//	})
package cache
