package session

import (
	"context"
	"errors"
)

var (
	// ErrNotConfigured is returned when a session is requested from an
	// application without a session store.
	ErrNotConfigured = errors.New("session: not configured")
	ErrNotFound      = errors.New("session: not found")
	ErrExpired       = errors.New("session: expired")
	ErrInvalidToken  = errors.New("session: invalid token")
	ErrTypeMismatch  = errors.New("session: type mismatch")
)

// Store persists sessions by cookie token.
type Store interface {
	Create(ctx context.Context, s *Session) error

	// Get fails with ErrNotFound for unknown tokens and ErrExpired for
	// sessions past their expiration.
	Get(ctx context.Context, token string) (*Session, error)

	Update(ctx context.Context, s *Session) error
	Delete(ctx context.Context, token string) error
}
