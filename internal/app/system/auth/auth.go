// Package auth manages cookie sessions and the signed-in volunteer context.
//
// The session payload is deliberately small: a profile ID and the auth mode
// hint. Profile data is fetched fresh on each request through a
// ProfileFetcher, so edits and deletions take effect immediately.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

// Session value keys. The payload is only {profile_id, mode}; no serialized
// user object is ever stored in the cookie.
const (
	isAuthKey    = "is_authenticated"
	profileIDKey = "profile_id"
	modeKey      = "mode"
)

// Auth modes. The mode chosen by the client is advisory; the identity-store
// lookup result always overrides it after authentication.
const (
	ModeSignIn   = "signin"
	ModeRegister = "register"
)

// NormalizeMode maps any client-supplied string to a valid mode,
// defaulting to signin.
func NormalizeMode(s string) string {
	if strings.TrimSpace(strings.ToLower(s)) == ModeRegister {
		return ModeRegister
	}
	return ModeSignIn
}

// SessionUser is the signed-in volunteer injected into r.Context().
type SessionUser struct {
	ID          string
	Name        string
	Email       string
	Preferences []string
}

// ProfileFetcher loads fresh profile data for a session's profile ID.
// Returning nil means the profile no longer exists (or cannot be loaded)
// and the request proceeds as anonymous.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, profileID string) *SessionUser
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the signed-in volunteer and a "found?" flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// WithTestUser injects a SessionUser into the request context.
// For handler tests only; bypasses the session middleware.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

// SessionManager owns the cookie store. It is created once in bootstrap and
// passed to the handlers that need it; there is no package-global store.
type SessionManager struct {
	store   *sessions.CookieStore
	name    string
	log     *zap.Logger
	fetcher ProfileFetcher
}

// NewSessionManager builds a cookie-backed session manager.
//
// In production (secure=true) cookies are Secure + SameSite=Lax; over plain
// http in dev, secure must be false so the browser accepts them.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	logger.Info("session store initialized",
		zap.String("cookie", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{store: store, name: name, log: logger}, nil
}

// SetProfileFetcher wires the store used to load fresh profile data on each
// request. Must be called before the handler tree is served.
func (m *SessionManager) SetProfileFetcher(f ProfileFetcher) {
	m.fetcher = f
}

// Store exposes the underlying cookie store (logout needs its options).
func (m *SessionManager) Store() *sessions.CookieStore {
	return m.store
}

// GetSession returns the request's session, creating a fresh one if the
// cookie is absent or fails to decode. The error is the decode error, if any;
// the returned session is always usable.
func (m *SessionManager) GetSession(r *http.Request) (*sessions.Session, error) {
	return m.store.Get(r, m.name)
}

// SignIn marks the session authenticated for the given profile and mode.
func (m *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, profileID, mode string) error {
	sess, err := m.GetSession(r)
	if err != nil {
		// Corrupt cookie: continue with the fresh session Get returned.
		if scErr, ok := err.(securecookie.Error); ok && scErr.IsDecode() {
			m.log.Warn("session cookie invalid, using fresh session", zap.Error(err))
		} else {
			m.log.Error("session store error during sign-in, using fresh session", zap.Error(err))
		}
	}
	sess.Values[isAuthKey] = true
	sess.Values[profileIDKey] = profileID
	sess.Values[modeKey] = NormalizeMode(mode)
	return sess.Save(r, w)
}

// SignOut expires the session cookie.
func (m *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, err := m.GetSession(r)
	if err != nil {
		m.log.Warn("session decode failed during sign-out", zap.Error(err))
	}

	// The deletion cookie must match the store's original settings.
	if opts := m.store.Options; opts != nil {
		sess.Options.Domain = opts.Domain
		sess.Options.Path = opts.Path
		sess.Options.Secure = opts.Secure
		sess.Options.HttpOnly = opts.HttpOnly
		sess.Options.SameSite = opts.SameSite
	}
	sess.Options.MaxAge = -1 // delete immediately

	return sess.Save(r, w)
}

// Mode returns the session's auth-mode hint, defaulting to signin.
func (m *SessionManager) Mode(r *http.Request) string {
	sess, _ := m.GetSession(r)
	if v, ok := sess.Values[modeKey].(string); ok {
		return NormalizeMode(v)
	}
	return ModeSignIn
}

// SetMode records the client's mode selection before delegating to the
// identity provider.
func (m *SessionManager) SetMode(w http.ResponseWriter, r *http.Request, mode string) error {
	sess, err := m.GetSession(r)
	if err != nil {
		m.log.Warn("session decode failed while recording mode, using fresh session", zap.Error(err))
	}
	sess.Values[modeKey] = NormalizeMode(mode)
	return sess.Save(r, w)
}

// LoadSessionUser injects the volunteer into context if the session is
// authenticated. A profile that no longer resolves leaves the request
// anonymous.
func (m *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := m.GetSession(r)

		if isAuth, _ := sess.Values[isAuthKey].(bool); isAuth {
			profileID, _ := sess.Values[profileIDKey].(string)
			if profileID != "" {
				if m.fetcher != nil {
					if u := m.fetcher.FetchProfile(r.Context(), profileID); u != nil {
						r = withUser(r, u)
					}
				} else {
					r = withUser(r, &SessionUser{ID: profileID})
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn ensures there is a volunteer in context (set by
// LoadSessionUser). Browsers are redirected to the anonymous home page;
// API callers get a plain 401.
func (m *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}

		if wantsHTML(r) {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})
}

// helpers

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
