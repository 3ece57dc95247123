package session

import (
	"context"

	"github.com/dmitrymomot/swallow/pkg/cache"
)

type ctxKey struct{}

// WithContext returns a copy of ctx carrying sess.
func WithContext(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, sess)
}

// FromContext returns the session bound to ctx.
// Returns ErrNotConfigured when no session middleware ran for the request.
func FromContext(ctx context.Context) (*Session, error) {
	sess, ok := ctx.Value(ctxKey{}).(*Session)
	if !ok || sess == nil {
		return nil, ErrNotConfigured
	}
	return sess, nil
}

// Values is a cache.SessionResolver backed by FromContext.
func Values(ctx context.Context) (cache.SessionValues, error) {
	sess, err := FromContext(ctx)
	if err != nil {
		return nil, err
	}
	return sess, nil
}
