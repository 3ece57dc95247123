package cache

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Driver names accepted by Open. Matching is case-insensitive.
const (
	DriverMemory  = "memory"
	DriverFile    = "file"
	DriverSQLite  = "sqlite"
	DriverSession = "session"
	DriverRedis   = "redis"
)

// Config selects and configures a cache backend.
type Config struct {
	Driver     string `koanf:"driver"`
	FilePath   string `koanf:"file_path"`
	SQLitePath string `koanf:"sqlite_path"`
	Prefix     string `koanf:"prefix"`
}

// OpenOption supplies backend dependencies to Open.
type OpenOption func(*openOptions)

type openOptions struct {
	redis   redis.UniversalClient
	session SessionResolver
	memory  []MemoryOption
}

// WithRedisClient provides the client used by the redis driver.
func WithRedisClient(c redis.UniversalClient) OpenOption {
	return func(o *openOptions) {
		o.redis = c
	}
}

// WithSessionResolver provides the resolver used by the session driver.
func WithSessionResolver(fn SessionResolver) OpenOption {
	return func(o *openOptions) {
		o.session = fn
	}
}

// WithMemoryOptions forwards options to the memory driver.
func WithMemoryOptions(opts ...MemoryOption) OpenOption {
	return func(o *openOptions) {
		o.memory = append(o.memory, opts...)
	}
}

// Open builds the cache backend named by cfg.Driver.
// An empty driver selects the file backend.
// Unknown drivers fail with ErrUnknownDriver.
func Open[V any](ctx context.Context, cfg Config, opts ...OpenOption) (Cache[V], error) {
	o := &openOptions{}
	for _, opt := range opts {
		opt(o)
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case DriverFile, "":
		return NewFile[V](cfg.FilePath, nil), nil
	case DriverMemory:
		return NewMemory[V](o.memory...), nil
	case DriverSQLite:
		db, err := OpenSQLiteDB(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		c, err := NewSQLite[V](ctx, db, nil)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		c.ownsDB = true
		return c, nil
	case DriverSession:
		if o.session == nil {
			return nil, fmt.Errorf("%w: session resolver for driver %q", ErrDriverDependency, cfg.Driver)
		}
		return NewSession[V](o.session, nil, cfg.Prefix), nil
	case DriverRedis:
		if o.redis == nil {
			return nil, fmt.Errorf("%w: redis client for driver %q", ErrDriverDependency, cfg.Driver)
		}
		var ropts []RedisOption
		if cfg.Prefix != "" {
			ropts = append(ropts, WithPrefix(cfg.Prefix))
		}
		return NewRedis[V](o.redis, nil, ropts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}
