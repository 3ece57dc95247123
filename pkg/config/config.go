package config

import (
	"time"

	"github.com/dmitrymomot/swallow/pkg/cache"
	"github.com/dmitrymomot/swallow/pkg/db"
	"github.com/dmitrymomot/swallow/pkg/logger"
	"github.com/dmitrymomot/swallow/pkg/redis"
)

// Config is the application configuration.
type Config struct {
	App       App           `koanf:"app"`
	Log       logger.Config `koanf:"log"`
	Session   Session       `koanf:"session"`
	Cache     cache.Config  `koanf:"cache"`
	Redis     redis.Config  `koanf:"redis"`
	DB        db.Config     `koanf:"db"`
	RateLimit RateLimit     `koanf:"ratelimit"`
}

// App holds HTTP server settings.
type App struct {
	Name            string        `koanf:"name"`
	Env             string        `koanf:"env"`
	Address         string        `koanf:"address" validate:"required"`
	RequestTimeout  time.Duration `koanf:"request_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gte=0"`
	PerPage         int           `koanf:"per_page" validate:"gte=0"`
	Debug           bool          `koanf:"debug"`
}

// Session holds cookie session settings.
type Session struct {
	CookieName string        `koanf:"cookie_name" validate:"required"`
	TTL        time.Duration `koanf:"ttl" validate:"gt=0"`
	Secure     bool          `koanf:"secure"`
}

// RateLimit holds the per-client request budget.
type RateLimit struct {
	Limit  int           `koanf:"limit" validate:"gt=0"`
	Window time.Duration `koanf:"window" validate:"gt=0"`
}

// defaults is the lowest-precedence layer, keyed by koanf path.
func defaults() map[string]any {
	dbc := db.DefaultConfig()
	rc := redis.DefaultConfig()

	return map[string]any{
		"app.name":             "swallow",
		"app.env":              "production",
		"app.address":          ":8080",
		"app.debug":            false,
		"app.request_timeout":  30 * time.Second,
		"app.shutdown_timeout": 30 * time.Second,
		"app.per_page":         20,

		"log.level":  "info",
		"log.format": logger.FormatJSON,

		"session.cookie_name": "swallow_session",
		"session.ttl":         24 * time.Hour,
		"session.secure":      false,

		"cache.driver":      cache.DriverFile,
		"cache.file_path":   cache.DefaultFilePath,
		"cache.sqlite_path": "storage/cache/cache.sqlite",

		"ratelimit.limit":  60,
		"ratelimit.window": time.Minute,

		"db.port":               dbc.Port,
		"db.sslmode":            dbc.SSLMode,
		"db.healthcheck_period": dbc.HealthCheckPeriod,
		"db.max_conn_idle_time": dbc.MaxConnIdleTime,
		"db.max_conn_lifetime":  dbc.MaxConnLifetime,
		"db.query_timeout":      dbc.QueryTimeout,
		"db.retry_attempts":     dbc.RetryAttempts,
		"db.retry_interval":     dbc.RetryInterval,
		"db.max_open_conns":     dbc.MaxOpenConns,
		"db.min_conns":          dbc.MinConns,

		"redis.pool_size":       rc.PoolSize,
		"redis.min_idle_conns":  rc.MinIdleConns,
		"redis.max_idle_time":   rc.MaxIdleTime,
		"redis.max_active_time": rc.MaxActiveTime,
		"redis.retry_attempts":  rc.RetryAttempts,
		"redis.retry_interval":  rc.RetryInterval,
		"redis.read_timeout":    rc.ReadTimeout,
		"redis.write_timeout":   rc.WriteTimeout,
		"redis.dial_timeout":    rc.DialTimeout,
	}
}
