package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sync"
	"time"

	"carevia/internal/domain/session"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const sessionContextKey contextKey = "session"

// SessionCookieName is the cookie holding the session token.
const SessionCookieName = "carevia_session"

// SessionStore is an in-memory map from cookie tokens to admin sessions.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]session.Context
	now      func() time.Time
}

// NewSessionStore creates a new in-memory session store.
// A nil now defaults to time.Now.
func NewSessionStore(now func() time.Time) *SessionStore {
	if now == nil {
		now = time.Now
	}
	return &SessionStore{
		sessions: make(map[string]session.Context),
		now:      now,
	}
}

// Create stores an authenticated session and returns its token.
// PRE: sc is authenticated
// POST: Session is stored, token is returned
func (ss *SessionStore) Create(sc session.Context) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.sessions[token] = sc
	return token, nil
}

// Get returns the session for token after running the expiry check.
// POST: Expired sessions are removed and reported as absent
func (ss *SessionStore) Get(token string) (session.Context, bool) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	sc, ok := ss.sessions[token]
	if !ok {
		return session.Context{}, false
	}
	if !sc.Check(ss.now()) {
		delete(ss.sessions, token)
		return session.Context{}, false
	}
	return sc, true
}

// Delete removes a session by token.
// POST: Session with given token is removed
func (ss *SessionStore) Delete(token string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	delete(ss.sessions, token)
}

// Len returns the number of stored sessions, including expired ones not yet checked.
func (ss *SessionStore) Len() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return len(ss.sessions)
}

// Auth returns middleware that loads the session from the cookie into the context.
// It does NOT block unauthenticated requests; use RequireAdmin for that.
func Auth(sessions *SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
				if sc, ok := sessions.Get(cookie.Value); ok {
					r = r.WithContext(ContextWithSession(r.Context(), sc))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin redirects requests without an authenticated session to /login.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetSessionFromContext(r.Context()); !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetSessionFromContext extracts the authenticated session from the request context.
func GetSessionFromContext(ctx context.Context) (session.Context, bool) {
	sc, ok := ctx.Value(sessionContextKey).(session.Context)
	return sc, ok && sc.Authenticated
}

// ContextWithSession returns a context with the given session set.
func ContextWithSession(ctx context.Context, sc session.Context) context.Context {
	return context.WithValue(ctx, sessionContextKey, sc)
}

// SetSessionCookie sets the session cookie for the full session lifetime.
func SetSessionCookie(w http.ResponseWriter, token string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   int(session.Lifetime / time.Second),
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   -1,
	})
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
