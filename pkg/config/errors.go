package config

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidProperty = errors.New("config: invalid property")
	ErrLoad            = errors.New("config: failed to load")
)

// PropertyError reports a configuration value that cannot be used.
// Key is the environment variable name when the value came from the
// environment, otherwise the config path.
type PropertyError struct {
	Key    string
	Value  string
	Reason string
}

func (e *PropertyError) Error() string {
	msg := fmt.Sprintf("config: invalid value %q for %s", e.Value, e.Key)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *PropertyError) Unwrap() error {
	return ErrInvalidProperty
}
