// Package logger builds the structured slog logger used across the
// framework.
//
// [New] picks a JSON or text handler at the configured level and, when a
// Sentry DSN is configured, fans records out to Sentry as well:
//
//	log := logger.New(cfg.Log,
//	    logger.WithExtractors(swallow.RequestIDExtractor()),
//	)
//
// Context extractors run on every record, so request-scoped values such as
// the request id are attached without passing loggers around. [NewNope]
// returns a discarding logger for tests and defaults.
package logger
