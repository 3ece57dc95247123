package internal

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/swallow/pkg/id"
	"github.com/dmitrymomot/swallow/pkg/session"
)

// Default session configuration.
const (
	defaultSessionCookieName = "swallow_session"
	defaultSessionTTL        = 24 * time.Hour
)

// SessionManager ties a session.Store to the session cookie.
type SessionManager struct {
	store      session.Store
	logger     *slog.Logger
	cookieName string
	domain     string
	path       string
	ttl        time.Duration
	sameSite   http.SameSite
	secure     bool
	httpOnly   bool
}

// SessionOption configures the SessionManager.
type SessionOption func(*SessionManager)

// NewSessionManager defaults to a host-only, HttpOnly, SameSite=Lax cookie
// named swallow_session living 24h.
func NewSessionManager(store session.Store, opts ...SessionOption) *SessionManager {
	sm := &SessionManager{
		store:      store,
		cookieName: defaultSessionCookieName,
		ttl:        defaultSessionTTL,
		path:       "/",
		httpOnly:   true,
		sameSite:   http.SameSiteLaxMode,
	}

	for _, opt := range opts {
		opt(sm)
	}

	return sm
}

// WithSessionCookieName sets the session cookie name.
func WithSessionCookieName(name string) SessionOption {
	return func(sm *SessionManager) {
		if name != "" {
			sm.cookieName = name
		}
	}
}

// WithSessionTTL sets how long a session lives after creation.
func WithSessionTTL(d time.Duration) SessionOption {
	return func(sm *SessionManager) {
		if d > 0 {
			sm.ttl = d
		}
	}
}

// WithSessionDomain sets the session cookie domain.
func WithSessionDomain(domain string) SessionOption {
	return func(sm *SessionManager) {
		sm.domain = domain
	}
}

// WithSessionSecure sets the session cookie Secure flag.
func WithSessionSecure(secure bool) SessionOption {
	return func(sm *SessionManager) {
		sm.secure = secure
	}
}

// WithSessionSameSite sets the session cookie SameSite attribute.
func WithSessionSameSite(sameSite http.SameSite) SessionOption {
	return func(sm *SessionManager) {
		sm.sameSite = sameSite
	}
}

// SetLogger is called by New with the app logger.
func (sm *SessionManager) SetLogger(l *slog.Logger) {
	if l != nil {
		sm.logger = l
	}
}

// LoadSession resolves the request's session cookie. A request without the
// cookie yields nil, nil; store misses surface as session.ErrNotFound or
// session.ErrExpired.
func (sm *SessionManager) LoadSession(ctx context.Context, r *http.Request) (*session.Session, error) {
	cookie, err := r.Cookie(sm.cookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}

	return sm.store.Get(ctx, cookie.Value)
}

// NewSession creates a session that is persisted only once it is modified.
func (sm *SessionManager) NewSession() (*session.Session, error) {
	token, err := id.NewToken()
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}
	return session.New(id.NewULID(), token, time.Now().Add(sm.ttl)), nil
}

// Persist stores sess if it has unsaved changes and writes the cookie for
// sessions stored for the first time.
func (sm *SessionManager) Persist(ctx context.Context, w http.ResponseWriter, sess *session.Session) error {
	if sess == nil || !sess.IsDirty() {
		return nil
	}

	sess.LastActiveAt = time.Now()

	if sess.IsNew() {
		if err := sm.store.Create(ctx, sess); err != nil {
			return err
		}
		sess.ClearNew()
		sm.SaveCookie(w, sess)
	} else if err := sm.store.Update(ctx, sess); err != nil {
		return err
	}

	sess.ClearDirty()
	return nil
}

// SaveCookie writes the session cookie to the response.
func (sm *SessionManager) SaveCookie(w http.ResponseWriter, sess *session.Session) {
	c := sm.cookie(sess.Token)
	c.Expires = sess.ExpiresAt
	http.SetCookie(w, c)
}

func (sm *SessionManager) cookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     sm.cookieName,
		Value:    value,
		Path:     sm.path,
		Domain:   sm.domain,
		Secure:   sm.secure,
		HttpOnly: sm.httpOnly,
		SameSite: sm.sameSite,
	}
}

// RotateToken replaces the token of a stored session, invalidating the old one.
// New sessions only get a fresh token.
func (sm *SessionManager) RotateToken(ctx context.Context, w http.ResponseWriter, sess *session.Session) error {
	token, err := id.NewToken()
	if err != nil {
		return fmt.Errorf("generate session token: %w", err)
	}

	if sess.IsNew() {
		sess.Token = token
		sess.MarkDirty()
		return nil
	}

	oldToken := sess.Token
	sess.Token = token
	if err := sm.store.Create(ctx, sess); err != nil {
		sess.Token = oldToken
		return err
	}
	if err := sm.store.Delete(ctx, oldToken); err != nil && sm.logger != nil {
		sm.logger.WarnContext(ctx, "failed to delete rotated session", slog.String("session_id", sess.ID), slog.Any("error", err))
	}
	sm.SaveCookie(w, sess)
	return nil
}

// Destroy removes sess from the store and clears the cookie.
func (sm *SessionManager) Destroy(ctx context.Context, w http.ResponseWriter, sess *session.Session) error {
	if sess != nil && !sess.IsNew() {
		if err := sm.store.Delete(ctx, sess.Token); err != nil {
			return err
		}
	}
	expired := sm.cookie("")
	expired.MaxAge = -1
	http.SetCookie(w, expired)
	return nil
}

// Store returns the underlying session store.
func (sm *SessionManager) Store() session.Store {
	return sm.store
}
