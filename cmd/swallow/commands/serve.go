package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/swallow"
	"github.com/dmitrymomot/swallow/app"
	"github.com/dmitrymomot/swallow/middlewares"
	"github.com/dmitrymomot/swallow/pkg/cache"
	"github.com/dmitrymomot/swallow/pkg/config"
	"github.com/dmitrymomot/swallow/pkg/db"
	"github.com/dmitrymomot/swallow/pkg/logger"
	"github.com/dmitrymomot/swallow/pkg/metrics"
	"github.com/dmitrymomot/swallow/pkg/query"
	"github.com/dmitrymomot/swallow/pkg/ratelimit"
	"github.com/dmitrymomot/swallow/pkg/redis"
	"github.com/dmitrymomot/swallow/pkg/session"
	"github.com/dmitrymomot/swallow/pkg/views"
)

const sentryFlushTimeout = 2 * time.Second

func newServeCmd(f *flags) *cobra.Command {
	var address string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long:  "Connect the configured backends and serve the application until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, _, err := config.Load(ctx, f.loadOptions()...)
			if err != nil {
				return err
			}
			if address != "" {
				cfg.App.Address = address
			}

			log := logger.New(cfg.Log, logger.WithExtractors(middlewares.RequestIDExtractor()))

			s, err := newServer(ctx, cfg, log)
			if err != nil {
				return err
			}
			return s.app.Run(s.runOptions...)
		},
	}

	cmd.Flags().StringVarP(&address, "address", "a", "", "listen address, overrides APP_ADDRESS")

	return cmd
}

// server is the wired application and the options to run it.
type server struct {
	app        *swallow.App
	runOptions []swallow.RunOption
}

// newServer connects the configured backends and builds the application.
// Backends opened before a failure are closed again.
func newServer(ctx context.Context, cfg config.Config, log *slog.Logger) (_ *server, err error) {
	var (
		shutdown []func(context.Context) error
		health   []swallow.HealthOption
		exec     query.Executor
		client   goredis.UniversalClient
	)
	defer func() {
		if err != nil {
			for _, fn := range shutdown {
				_ = fn(context.Background())
			}
		}
	}()

	if cfg.DB.Enabled() {
		pool, err := db.Connect(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		exec = query.Pgx(pool)
		shutdown = append(shutdown, db.Shutdown(pool))
		health = append(health, swallow.WithReadinessCheck("db", db.Healthcheck(pool)))
	}

	if cfg.Redis.URL != "" {
		client, err = redis.Open(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		shutdown = append(shutdown, redis.Shutdown(client))
		health = append(health, swallow.WithReadinessCheck("redis", redis.Healthcheck(client)))
	}

	rec := metrics.NewRecorder(nil)

	limiterMW, closeLimiter, err := rateLimiter(ctx, cfg, client, rec, log)
	if err != nil {
		return nil, err
	}
	shutdown = append(shutdown, closeLimiter)

	opts, err := appOptions(cfg, exec, views.NewDocs(metrics.InstrumentCache[string](cache.NewMemory[string](), rec, "docs")))
	if err != nil {
		return nil, err
	}

	opts = append(opts,
		swallow.WithLogger(log),
		swallow.WithDebug(cfg.App.Debug),
		swallow.WithErrorHandler(swallow.NewExceptionHandler(
			swallow.WithTrace(cfg.App.Debug),
			swallow.WithErrorMapping(cache.ErrUnknownDriver, swallow.StatusEnvPropertyInvalid),
			swallow.WithErrorMapping(cache.ErrDriverDependency, swallow.StatusEnvPropertyInvalid),
			swallow.WithErrorMapping(config.ErrInvalidProperty, swallow.StatusEnvPropertyInvalid),
		)),
		swallow.WithMiddleware(
			middlewares.RequestID(),
			middlewares.Recover(),
			middlewares.RequestLogger(),
			middlewares.StartSession(),
			limiterMW,
			middlewares.Timeout(cfg.App.RequestTimeout),
		),
		swallow.WithSession(session.NewCacheStore(sessionCache(client, rec)),
			swallow.WithSessionCookieName(cfg.Session.CookieName),
			swallow.WithSessionTTL(cfg.Session.TTL),
			swallow.WithSessionSecure(cfg.Session.Secure),
		),
		swallow.WithQueryTimeout(cfg.DB.QueryTimeout),
		swallow.WithMetrics(rec),
		swallow.WithHealthChecks(health...),
	)

	runOpts := []swallow.RunOption{
		swallow.Address(cfg.App.Address),
		swallow.Logger(log),
		swallow.ShutdownTimeout(cfg.App.ShutdownTimeout),
	}
	for _, fn := range shutdown {
		runOpts = append(runOpts, swallow.ShutdownHook(fn))
	}
	if cfg.Log.SentryDSN != "" {
		runOpts = append(runOpts, swallow.ShutdownHook(func(context.Context) error {
			sentry.Flush(sentryFlushTimeout)
			return nil
		}))
	}

	return &server{app: swallow.New(opts...), runOptions: runOpts}, nil
}

// appOptions mounts the sample application.
func appOptions(cfg config.Config, exec query.Executor, docs *views.Docs) ([]swallow.Option, error) {
	return app.Options(app.Config{
		DB:      exec,
		Docs:    docs,
		PerPage: cfg.App.PerPage,
	})
}

// rateLimiter builds the rate limit middleware over the configured cache
// driver. A misconfigured driver does not stop the server: every request is
// answered with the configuration fault instead.
func rateLimiter(ctx context.Context, cfg config.Config, client goredis.UniversalClient, rec *metrics.Recorder, log *slog.Logger) (swallow.Middleware, func(context.Context) error, error) {
	opts := []cache.OpenOption{cache.WithSessionResolver(session.Values)}
	if client != nil {
		opts = append(opts, cache.WithRedisClient(client))
	}

	windows, err := cache.Open[ratelimit.Window](ctx, cfg.Cache, opts...)
	switch {
	case errors.Is(err, cache.ErrUnknownDriver), errors.Is(err, cache.ErrDriverDependency):
		log.ErrorContext(ctx, "rate limiter cache unavailable", slog.String("driver", cfg.Cache.Driver), slog.Any("error", err))
		return failWith(fmt.Errorf("rate limiter cache: %w", err)), noop, nil
	case err != nil:
		return nil, nil, fmt.Errorf("open rate limiter cache: %w", err)
	}

	windows = metrics.InstrumentCache(windows, rec, driverLabel(cfg.Cache.Driver))
	limiter := ratelimit.New(windows, cfg.RateLimit.Limit, ratelimit.WithWindow(cfg.RateLimit.Window))

	closeWindows := func(context.Context) error { return windows.Close() }
	return middlewares.RateLimit(limiter, middlewares.WithRateLimitMetrics(rec)), closeWindows, nil
}

// sessionCache stores sessions in redis when a client is available.
func sessionCache(client goredis.UniversalClient, rec *metrics.Recorder) cache.Cache[session.Session] {
	if client != nil {
		return metrics.InstrumentCache[session.Session](
			cache.NewRedis[session.Session](client, nil, cache.WithPrefix("swallow:")), rec, cache.DriverRedis)
	}
	return metrics.InstrumentCache[session.Session](cache.NewMemory[session.Session](), rec, cache.DriverMemory)
}

func driverLabel(driver string) string {
	if driver == "" {
		return cache.DriverFile
	}
	return driver
}

func failWith(err error) swallow.Middleware {
	return func(swallow.HandlerFunc) swallow.HandlerFunc {
		return func(swallow.Context) error {
			return err
		}
	}
}

func noop(context.Context) error { return nil }
