package session

import (
	"context"
	"errors"
	"maps"

	"github.com/dmitrymomot/swallow/pkg/cache"
)

// CacheStore keeps sessions in any cache backend, keyed by token.
// Entries expire together with the session.
type CacheStore struct {
	cache cache.Cache[Session]
}

// NewCacheStore returns a Store backed by c.
func NewCacheStore(c cache.Cache[Session]) *CacheStore {
	return &CacheStore{cache: c}
}

func (s *CacheStore) Create(ctx context.Context, sess *Session) error {
	return s.cache.Set(ctx, storeKey(sess.Token), snapshot(sess), sess.ExpiresAt)
}

func (s *CacheStore) Get(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	sess, err := s.cache.Get(ctx, storeKey(token))
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if sess.IsExpired() {
		_ = s.cache.Delete(ctx, storeKey(token))
		return nil, ErrExpired
	}

	sess.Values = maps.Clone(sess.Values)
	return &sess, nil
}

func (s *CacheStore) Update(ctx context.Context, sess *Session) error {
	return s.cache.Set(ctx, storeKey(sess.Token), snapshot(sess), sess.ExpiresAt)
}

func (s *CacheStore) Delete(ctx context.Context, token string) error {
	return s.cache.Delete(ctx, storeKey(token))
}

// snapshot copies sess without its in-memory flags so backends that keep
// values by reference do not share state with the live session.
func snapshot(sess *Session) Session {
	out := *sess
	out.Values = maps.Clone(sess.Values)
	out.dirty = false
	out.isNew = false
	return out
}

func storeKey(token string) string {
	return "session:" + token
}

var _ Store = (*CacheStore)(nil)
