package session

import (
	"fmt"
	"maps"
	"slices"
	"time"
)

// Session is the server-side state of one visitor. Its values back the
// session cache driver and are readable from controllers.
//
// The cookie carries Token, not ID, so a token can be rotated on login
// without losing the session.
type Session struct {
	CreatedAt    time.Time      `json:"created_at"`
	LastActiveAt time.Time      `json:"last_active_at"`
	ExpiresAt    time.Time      `json:"expires_at"`
	UserID       *string        `json:"user_id,omitempty"`
	Values       map[string]any `json:"values"`
	ID           string         `json:"id"`
	Token        string         `json:"token"`

	dirty bool
	isNew bool
}

// New creates an unsaved session. It stays clean until a value is
// written, so visits that never touch the session store nothing.
func New(id, token string, expiresAt time.Time) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		Token:        token,
		Values:       map[string]any{},
		CreatedAt:    now,
		LastActiveAt: now,
		ExpiresAt:    expiresAt,
		isNew:        true,
	}
}

// IsAuthenticated reports whether a user is bound to the session.
func (s *Session) IsAuthenticated() bool {
	return s.UserID != nil && *s.UserID != ""
}

// SetValue stores val under key and marks the session dirty.
func (s *Session) SetValue(key string, val any) {
	if s.Values == nil {
		s.Values = map[string]any{}
	}
	s.Values[key] = val
	s.dirty = true
}

// GetValue returns the value under key.
func (s *Session) GetValue(key string) (any, bool) {
	val, ok := s.Values[key]
	return val, ok
}

// DeleteValue removes key, marking the session dirty if it was present.
func (s *Session) DeleteValue(key string) {
	if _, ok := s.Values[key]; ok {
		delete(s.Values, key)
		s.dirty = true
	}
}

// Keys returns the value keys in sorted order.
func (s *Session) Keys() []string {
	return slices.Sorted(maps.Keys(s.Values))
}

func (s *Session) IsDirty() bool { return s.dirty }
func (s *Session) MarkDirty()    { s.dirty = true }
func (s *Session) ClearDirty()   { s.dirty = false }

// IsNew reports whether the session has never been stored.
func (s *Session) IsNew() bool { return s.isNew }
func (s *Session) ClearNew()   { s.isNew = false }

// IsExpired reports whether the session is past ExpiresAt.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Value returns the value under key as T. Values restored from a JSON
// backend come back as JSON types, so numbers are float64.
func Value[T any](s *Session, key string) (T, error) {
	var zero T
	if s == nil {
		return zero, ErrNotFound
	}
	val, ok := s.Values[key]
	if !ok {
		return zero, ErrNotFound
	}
	typed, ok := val.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %q holds %T", ErrTypeMismatch, key, val)
	}
	return typed, nil
}

// ValueOr returns the value under key as T, or def.
func ValueOr[T any](s *Session, key string, def T) T {
	if v, err := Value[T](s, key); err == nil {
		return v
	}
	return def
}
