package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache is a generic key-value cache with absolute expiration.
//
// Expiration semantics for Set:
//   - Zero expiresAt: the entry never expires
//   - Otherwise: the entry is logically absent once now >= expiresAt
//
// Reading an expired entry deletes it and reports a miss.
type Cache[V any] interface {
	// Get retrieves a value by key.
	// Returns ErrNotFound if the key does not exist or has expired.
	Get(ctx context.Context, key string) (V, error)

	// Set stores a value until expiresAt.
	Set(ctx context.Context, key string, value V, expiresAt time.Time) error

	// Delete removes a key from the cache.
	Delete(ctx context.Context, key string) error

	// Has checks whether a key exists and has not expired.
	Has(ctx context.Context, key string) (bool, error)

	// Clear removes all entries from the cache.
	Clear(ctx context.Context) error

	// Close releases resources (stops background goroutines, etc.).
	Close() error
}

// ExpiresIn returns the absolute expiration time d from now.
// A non-positive d yields the zero time, meaning "never expires".
func ExpiresIn(d time.Duration) time.Time {
	if d <= 0 {
		return time.Time{}
	}
	return time.Now().Add(d)
}

// expired reports whether expiresAt has been reached at now.
func expired(expiresAt, now time.Time) bool {
	return !expiresAt.IsZero() && !now.Before(expiresAt)
}

// Marshaler serializes and deserializes cache values for storage backends
// that require byte representation (file, SQLite, session, Redis).
type Marshaler[V any] interface {
	Marshal(v V) ([]byte, error)
	Unmarshal(data []byte) (V, error)
}

type jsonMarshaler[V any] struct{}

func (jsonMarshaler[V]) Marshal(v V) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrMarshal, err)
	}
	return data, nil
}

func (jsonMarshaler[V]) Unmarshal(data []byte) (V, error) {
	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		return v, errors.Join(ErrUnmarshal, err)
	}
	return v, nil
}

// JSONMarshaler returns the default JSON marshaler.
func JSONMarshaler[V any]() Marshaler[V] {
	return jsonMarshaler[V]{}
}

// Loader wraps a Cache with stampede protection.
// Concurrent misses for the same key share a single computation.
type Loader[V any] struct {
	cache Cache[V]
	group singleflight.Group
}

// NewLoader returns a Loader over c.
func NewLoader[V any](c Cache[V]) *Loader[V] {
	return &Loader[V]{cache: c}
}

type getOrSetResult[V any] struct {
	val       V
	expiresAt time.Time
}

// GetOrSet retrieves a value from the cache, or calls fn to compute it on a miss.
// If multiple goroutines call GetOrSet with the same key concurrently,
// fn is called only once.
//
// The callback returns the value, its expiration and an error.
// If fn returns an error, the value is not cached and the error is returned.
func (l *Loader[V]) GetOrSet(ctx context.Context, key string, fn func(ctx context.Context) (V, time.Time, error)) (V, error) {
	// Fast path: try cache first.
	if v, err := l.cache.Get(ctx, key); err == nil {
		return v, nil
	}

	v, err, _ := l.group.Do(key, func() (any, error) {
		val, expiresAt, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		// Best-effort cache the result.
		_ = l.cache.Set(ctx, key, val, expiresAt)
		return getOrSetResult[V]{val: val, expiresAt: expiresAt}, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}

	return v.(getOrSetResult[V]).val, nil
}
