package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// Output formats accepted by Config.Format.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Config selects the level and format of the application logger and the
// optional Sentry sink (LOG_LEVEL, LOG_FORMAT, SENTRY_DSN).
type Config struct {
	Level             string `koanf:"level" validate:"omitempty,oneof=debug info warn error DEBUG INFO WARN ERROR"`
	Format            string `koanf:"format" validate:"omitempty,oneof=json text"`
	SentryDSN         string `koanf:"sentry_dsn"`
	SentryEnvironment string `koanf:"sentry_environment"`
}

// Option tweaks logger construction.
type Option func(*options)

type options struct {
	out        io.Writer
	extractors []ContextExtractor
}

// WithOutput redirects log output. Default: os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.out = w
	}
}

// WithExtractors adds context extractors applied to every record.
func WithExtractors(ex ...ContextExtractor) Option {
	return func(o *options) {
		o.extractors = append(o.extractors, ex...)
	}
}

// ParseLevel maps debug/info/warn/error to a slog level. Anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates the application logger.
// When SentryDSN is set, warnings are forwarded to Sentry as logs and errors
// as events. A failed Sentry init falls back to local output only.
func New(cfg Config, opts ...Option) *slog.Logger {
	o := &options{out: os.Stdout}
	for _, opt := range opts {
		opt(o)
	}

	hopts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var local slog.Handler
	if strings.EqualFold(cfg.Format, FormatText) {
		local = slog.NewTextHandler(o.out, hopts)
	} else {
		local = slog.NewJSONHandler(o.out, hopts)
	}

	if cfg.SentryDSN == "" {
		return slog.New(withExtractors(local, o.extractors))
	}

	env := cfg.SentryEnvironment
	if env == "" {
		env = "production"
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.SentryDSN,
		Environment: env,
		EnableLogs:  true,
	}); err != nil {
		slog.New(local).Error("failed to initialize sentry", slog.String("error", err.Error()))
		return slog.New(withExtractors(local, o.extractors))
	}

	sentryHandler := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   []slog.Level{slog.LevelWarn, slog.LevelError},
	}.NewSentryHandler(context.Background())

	return slog.New(withExtractors(fanout{local, sentryHandler}, o.extractors))
}
