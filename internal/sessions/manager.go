package sessions

import (
	"context"
	"net/http"
	"time"

	"github.com/classgate/classgate/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CookieName is the name of the session cookie
const CookieName = "classgate_session"

type contextKey string

const sessionKey contextKey = "session"

// Manager ties the signed cookie transport to the server-side store. It is
// constructed once at startup with an injected secret and passed to the
// handlers that need it.
type Manager struct {
	codec        *CookieCodec
	store        Store
	ttl          time.Duration
	secureCookie bool
	logger       *zap.Logger
}

// NewManager creates a session manager
func NewManager(codec *CookieCodec, store Store, ttl time.Duration, secureCookie bool, logger *zap.Logger) *Manager {
	return &Manager{
		codec:        codec,
		store:        store,
		ttl:          ttl,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

// Start creates a new server-side session for the identity and role and sets
// the signed session cookie on the response, replacing any session the
// client already held.
func (m *Manager) Start(w http.ResponseWriter, r *http.Request, identity string, role models.Role) error {
	// Drop the prior binding so it does not linger until TTL.
	if cookie, err := r.Cookie(CookieName); err == nil {
		if old, err := m.codec.Open(cookie.Value); err == nil {
			m.store.End(r.Context(), old)
		}
	}

	sessionID := uuid.New().String()

	if err := m.store.Start(r.Context(), sessionID, Session{Identity: identity, Role: role}); err != nil {
		return err
	}

	token, err := m.codec.Seal(sessionID)
	if err != nil {
		// Roll back the orphaned server-side entry.
		m.store.End(r.Context(), sessionID)
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// End clears the server-side session and expires the cookie. It is
// idempotent: a request without a valid session cookie just gets the expired
// cookie back.
func (m *Manager) End(w http.ResponseWriter, r *http.Request) error {
	if cookie, err := r.Cookie(CookieName); err == nil {
		if sessionID, err := m.codec.Open(cookie.Value); err == nil {
			if err := m.store.End(r.Context(), sessionID); err != nil {
				return err
			}
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Middleware resolves the session cookie once per request and places the
// resulting session, if any, in the request context. A missing, forged, or
// expired cookie yields an anonymous request, never an error response.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(CookieName)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		sessionID, err := m.codec.Open(cookie.Value)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		sess, ok, err := m.store.Get(r.Context(), sessionID)
		if err != nil {
			// A store outage downgrades the request to anonymous; the
			// dashboards redirect to login rather than serving an error.
			m.logger.Error("failed to read session", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), sessionKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// FromContext retrieves the session from the request context
func FromContext(ctx context.Context) (Session, bool) {
	sess, ok := ctx.Value(sessionKey).(Session)
	return sess, ok
}
