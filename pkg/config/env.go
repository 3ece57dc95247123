package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// envKeys maps recognised environment variable names to koanf paths.
// Variables not listed here are ignored by the loader.
var envKeys = map[string]string{
	"APP_NAME":             "app.name",
	"APP_ENV":              "app.env",
	"APP_DEBUG":            "app.debug",
	"APP_ADDRESS":          "app.address",
	"APP_REQUEST_TIMEOUT":  "app.request_timeout",
	"APP_SHUTDOWN_TIMEOUT": "app.shutdown_timeout",
	"APP_PER_PAGE":         "app.per_page",

	"LOG_LEVEL":          "log.level",
	"LOG_FORMAT":         "log.format",
	"SENTRY_DSN":         "log.sentry_dsn",
	"SENTRY_ENVIRONMENT": "log.sentry_environment",

	"SESSION_COOKIE": "session.cookie_name",
	"SESSION_TTL":    "session.ttl",
	"SESSION_SECURE": "session.secure",

	"SWIFT_CACHE_DRIVER": "cache.driver",
	"CACHE_FILE_PATH":    "cache.file_path",
	"CACHE_SQLITE_PATH":  "cache.sqlite_path",
	"CACHE_PREFIX":       "cache.prefix",

	"API_RATE_LIMIT":        "ratelimit.limit",
	"API_RATE_LIMIT_WINDOW": "ratelimit.window",

	"DATABASE_URL": "db.url",
	"DB_HOST":      "db.host",
	"DB_PORT":      "db.port",
	"DB_DATABASE":  "db.database",
	"DB_USERNAME":  "db.username",
	"DB_PASSWORD":  "db.password",

	"REDIS_URL": "redis.url",
}

// parsers check raw environment strings before they reach the typed struct,
// so a bad value is reported under its variable name.
var parsers = map[string]func(string) error{
	"APP_DEBUG":             parseBool,
	"SESSION_SECURE":        parseBool,
	"DB_PORT":               parseInt,
	"API_RATE_LIMIT":        parseInt,
	"APP_PER_PAGE":          parseInt,
	"APP_REQUEST_TIMEOUT":   parseDuration,
	"APP_SHUTDOWN_TIMEOUT":  parseDuration,
	"SESSION_TTL":           parseDuration,
	"API_RATE_LIMIT_WINDOW": parseDuration,
}

func parseBool(s string) error {
	_, err := strconv.ParseBool(s)
	return err
}

func parseInt(s string) error {
	_, err := strconv.Atoi(s)
	return err
}

func parseDuration(s string) error {
	_, err := parseDurationValue(s)
	return err
}

// parseDurationValue accepts Go durations ("90s") and bare seconds ("90").
func parseDurationValue(s string) (string, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return strconv.Itoa(n) + "s", nil
	}
	if _, err := time.ParseDuration(s); err != nil {
		return "", err
	}
	return s, nil
}

// checkEnv validates a recognised variable and returns the value to load.
func checkEnv(name, value string) (string, error) {
	value = strings.TrimSpace(value)
	if parse, ok := parsers[name]; ok {
		if err := parse(value); err != nil {
			return "", &PropertyError{Key: name, Value: value, Reason: err.Error()}
		}
	}
	switch name {
	case "APP_REQUEST_TIMEOUT", "APP_SHUTDOWN_TIMEOUT", "SESSION_TTL", "API_RATE_LIMIT_WINDOW":
		return parseDurationValue(value)
	}
	return value, nil
}

// Env answers raw lookups by variable name: the process environment first,
// then the values read from the .env file.
type Env struct {
	dotenv map[string]string
	lookup func(string) (string, bool)
}

// NewEnv creates an accessor over the process environment and dotenv values.
func NewEnv(dotenv map[string]string) *Env {
	return &Env{dotenv: dotenv, lookup: os.LookupEnv}
}

// Lookup returns the value of name and whether it is set.
func (e *Env) Lookup(name string) (string, bool) {
	if e == nil {
		return "", false
	}
	if e.lookup != nil {
		if v, ok := e.lookup(name); ok {
			return v, true
		}
	}
	v, ok := e.dotenv[name]
	return v, ok
}

// Get returns the value of name, or def when it is unset.
func (e *Env) Get(name, def string) string {
	if v, ok := e.Lookup(name); ok {
		return v
	}
	return def
}

// Bool returns name parsed as a boolean, def when unset, or a
// *PropertyError when the value is not a boolean.
func (e *Env) Bool(name string, def bool) (bool, error) {
	v, ok := e.Lookup(name)
	if !ok {
		return def, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return def, &PropertyError{Key: name, Value: v, Reason: "not a boolean"}
	}
	return b, nil
}

// Int returns name parsed as an integer, def when unset, or a
// *PropertyError when the value is not an integer.
func (e *Env) Int(name string, def int) (int, error) {
	v, ok := e.Lookup(name)
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def, &PropertyError{Key: name, Value: v, Reason: "not an integer"}
	}
	return n, nil
}
