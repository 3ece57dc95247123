// Package redis opens go-redis clients for the redis cache driver and the
// rate limiter store.
//
// [Open] parses REDIS_URL (redis:// or rediss://), applies pool settings
// from [Config] and retries PING with linear backoff until the server
// answers or the attempts run out:
//
//	client, err := redis.Open(ctx, cfg.Redis)
//	if err != nil {
//	    return err
//	}
//	store, err := cache.Open[ratelimit.Window](ctx, cfg.Cache, cache.WithRedisClient(client))
//
// [Healthcheck] and [Shutdown] plug into the application's readiness
// checks and shutdown hooks.
package redis
