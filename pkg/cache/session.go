package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// SessionValues is the value bag of a request session.
// *session.Session satisfies it.
type SessionValues interface {
	GetValue(key string) (any, bool)
	SetValue(key string, val any)
	DeleteValue(key string)
	Keys() []string
}

// SessionResolver returns the session bound to ctx.
type SessionResolver func(ctx context.Context) (SessionValues, error)

// DefaultSessionPrefix namespaces cache entries among other session values.
const DefaultSessionPrefix = "cache:"

// Session is a cache scoped to the current request's session.
// Entries live as JSON strings in the session values under a key prefix,
// so they share the lifetime and persistence of the session itself.
type Session[V any] struct {
	resolve   SessionResolver
	marshaler Marshaler[V]
	now       func() time.Time
	prefix    string
}

// NewSession creates a session-scoped cache.
// If m is nil, JSON serialization is used; an empty prefix uses DefaultSessionPrefix.
func NewSession[V any](resolve SessionResolver, m Marshaler[V], prefix string) *Session[V] {
	if m == nil {
		m = jsonMarshaler[V]{}
	}
	if prefix == "" {
		prefix = DefaultSessionPrefix
	}
	return &Session[V]{resolve: resolve, marshaler: m, now: time.Now, prefix: prefix}
}

func (s *Session[V]) values(ctx context.Context) (SessionValues, error) {
	if s.resolve == nil {
		return nil, ErrNoSession
	}
	sv, err := s.resolve(ctx)
	if err != nil {
		return nil, errors.Join(ErrNoSession, err)
	}
	if sv == nil {
		return nil, ErrNoSession
	}
	return sv, nil
}

// Get retrieves a value by key.
// Expired entries are removed from the session and reported as ErrNotFound.
func (s *Session[V]) Get(ctx context.Context, key string) (V, error) {
	var zero V

	sv, err := s.values(ctx)
	if err != nil {
		return zero, err
	}

	raw, ok := sv.GetValue(s.prefix + key)
	if !ok {
		return zero, ErrNotFound
	}
	str, ok := raw.(string)
	if !ok {
		return zero, ErrUnmarshal
	}

	var e fileEntry
	if err := json.Unmarshal([]byte(str), &e); err != nil {
		return zero, errors.Join(ErrUnmarshal, err)
	}
	if e.Expiration != nil && expired(time.UnixMilli(*e.Expiration), s.now()) {
		sv.DeleteValue(s.prefix + key)
		return zero, ErrNotFound
	}

	return s.marshaler.Unmarshal(e.Value)
}

// Set stores a value until expiresAt. A zero expiresAt lives as long as the session.
func (s *Session[V]) Set(ctx context.Context, key string, value V, expiresAt time.Time) error {
	sv, err := s.values(ctx)
	if err != nil {
		return err
	}

	data, err := s.marshaler.Marshal(value)
	if err != nil {
		return err
	}

	e := fileEntry{Value: data}
	if !expiresAt.IsZero() {
		ms := expiresAt.UnixMilli()
		e.Expiration = &ms
	}
	encoded, err := json.Marshal(e)
	if err != nil {
		return errors.Join(ErrMarshal, err)
	}

	sv.SetValue(s.prefix+key, string(encoded))
	return nil
}

// Delete removes a key from the session cache.
func (s *Session[V]) Delete(ctx context.Context, key string) error {
	sv, err := s.values(ctx)
	if err != nil {
		return err
	}
	sv.DeleteValue(s.prefix + key)
	return nil
}

// Has checks whether a key exists and has not expired.
func (s *Session[V]) Has(ctx context.Context, key string) (bool, error) {
	if _, err := s.Get(ctx, key); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Clear removes every cache entry from the session, leaving other session values intact.
func (s *Session[V]) Clear(ctx context.Context) error {
	sv, err := s.values(ctx)
	if err != nil {
		return err
	}
	for _, k := range sv.Keys() {
		if strings.HasPrefix(k, s.prefix) {
			sv.DeleteValue(k)
		}
	}
	return nil
}

// Close is a no-op.
func (s *Session[V]) Close() error {
	return nil
}

var _ Cache[any] = (*Session[any])(nil)
