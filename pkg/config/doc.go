// Package config loads application settings with koanf.
//
// Layers, lowest precedence first: built-in defaults, optional YAML files,
// the .env file, the process environment. Only the variables listed in the
// package (APP_DEBUG, APP_ADDRESS, API_RATE_LIMIT, SWIFT_CACHE_DRIVER,
// DB_*, DATABASE_URL, REDIS_URL, LOG_LEVEL, LOG_FORMAT, SENTRY_DSN, ...)
// are read.
//
//	cfg, env, err := config.Load(ctx, config.WithFile("config.yaml"))
//	if err != nil {
//	    return err // errors.Is(err, config.ErrInvalidProperty) for bad values
//	}
//	name := env.Get("APP_NAME", "swallow")
package config
