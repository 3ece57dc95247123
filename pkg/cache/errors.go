package cache

import "errors"

// Sentinel errors for cache operations.
var (
	// ErrNotFound is returned when a key does not exist in the cache or has expired.
	ErrNotFound = errors.New("cache: entry not found")

	// ErrClosed is returned when an operation is attempted on a closed cache.
	ErrClosed = errors.New("cache: closed")

	// ErrMarshal is returned when value serialization fails.
	ErrMarshal = errors.New("cache: failed to marshal value")

	// ErrUnmarshal is returned when value deserialization fails.
	ErrUnmarshal = errors.New("cache: failed to unmarshal value")

	// ErrUnknownDriver is returned by Open for an unsupported driver name.
	ErrUnknownDriver = errors.New("cache: unknown driver")

	// ErrDriverDependency is returned by Open when a driver is selected
	// but its dependency (redis client, session resolver) was not provided.
	ErrDriverDependency = errors.New("cache: driver dependency missing")

	// ErrNoSession is returned by the session backend when the request carries no session.
	ErrNoSession = errors.New("cache: no session in context")

	// ErrStorage is returned when the backing store fails to read or write.
	ErrStorage = errors.New("cache: storage failure")
)
