package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultDotEnv is the dotenv file read when present.
const DefaultDotEnv = ".env"

// Option configures Load.
type Option func(*loader)

type loader struct {
	environ map[string]string
	files   []string
	dotenv  string
}

// WithFile adds a YAML file layered over the defaults. The file must exist.
func WithFile(path string) Option {
	return func(l *loader) {
		if path != "" {
			l.files = append(l.files, path)
		}
	}
}

// WithDotEnv reads variables from path instead of .env. A missing file is
// not an error; an empty path disables dotenv loading.
func WithDotEnv(path string) Option {
	return func(l *loader) {
		l.dotenv = path
	}
}

// WithEnviron replaces the process environment with vars.
func WithEnviron(vars map[string]string) Option {
	return func(l *loader) {
		l.environ = vars
	}
}

// Load builds the configuration with precedence
// defaults < YAML files < .env < process environment,
// then validates it. Invalid values fail with an error wrapping
// ErrInvalidProperty. The returned Env answers raw lookups.
func Load(ctx context.Context, opts ...Option) (Config, *Env, error) {
	l := &loader{dotenv: DefaultDotEnv}
	for _, opt := range opts {
		opt(l)
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return Config{}, nil, errors.Join(ErrLoad, err)
	}

	for _, path := range l.files {
		if err := ctx.Err(); err != nil {
			return Config{}, nil, err
		}
		if _, err := os.Stat(path); err != nil {
			return Config{}, nil, errors.Join(ErrLoad, fmt.Errorf("file %s: %w", path, err))
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, nil, errors.Join(ErrLoad, fmt.Errorf("file %s: %w", path, err))
		}
	}

	dotenv, err := readDotEnv(l.dotenv)
	if err != nil {
		return Config{}, nil, err
	}
	if err := loadVars(k, dotenv); err != nil {
		return Config{}, nil, err
	}

	envAccessor := NewEnv(dotenv)
	if l.environ != nil {
		if err := loadVars(k, l.environ); err != nil {
			return Config{}, nil, err
		}
		envAccessor.lookup = func(name string) (string, bool) {
			v, ok := l.environ[name]
			return v, ok
		}
	} else if err := loadProcessEnv(k); err != nil {
		return Config{}, nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, nil, errors.Join(ErrInvalidProperty, err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, nil, err
	}

	return cfg, envAccessor, nil
}

func readDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	vars, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Join(ErrLoad, fmt.Errorf("dotenv %s: %w", path, err))
	}
	return vars, nil
}

// loadVars layers recognised variables from vars onto k.
func loadVars(k *koanf.Koanf, vars map[string]string) error {
	flat := make(map[string]any, len(vars))
	for name, raw := range vars {
		path, ok := envKeys[name]
		if !ok {
			continue
		}
		v, err := checkEnv(name, raw)
		if err != nil {
			return err
		}
		flat[path] = v
	}
	if len(flat) == 0 {
		return nil
	}
	if err := k.Load(confmap.Provider(flat, "."), nil); err != nil {
		return errors.Join(ErrLoad, err)
	}
	return nil
}

// loadProcessEnv layers the process environment onto k.
func loadProcessEnv(k *koanf.Koanf) error {
	for name := range envKeys {
		if raw, ok := os.LookupEnv(name); ok {
			if _, err := checkEnv(name, raw); err != nil {
				return err
			}
		}
	}

	// Durations given as bare seconds must be normalised after the provider
	// copies them, so those keys are re-applied below.
	err := k.Load(env.Provider("", ".", func(s string) string {
		return envKeys[s]
	}), nil)
	if err != nil {
		return errors.Join(ErrLoad, err)
	}

	fixups := map[string]string{}
	for _, name := range []string{"APP_REQUEST_TIMEOUT", "APP_SHUTDOWN_TIMEOUT", "SESSION_TTL", "API_RATE_LIMIT_WINDOW"} {
		if raw, ok := os.LookupEnv(name); ok {
			fixups[name] = raw
		}
	}
	return loadVars(k, fixups)
}

// Validate checks struct-level constraints.
// The first failure is reported as a *PropertyError.
func Validate(cfg Config) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	err := v.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &PropertyError{
			Key:    strings.TrimPrefix(fe.Namespace(), "Config."),
			Value:  fmt.Sprint(fe.Value()),
			Reason: "failed " + fe.Tag() + " check",
		}
	}
	return errors.Join(ErrInvalidProperty, err)
}
