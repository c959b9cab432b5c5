// internal/app/features/authgoogle/handler.go
package authgoogle

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/virtuhq/virtu/internal/app/store/loginrecords"
	"github.com/virtuhq/virtu/internal/app/store/oauthstate"
	"github.com/virtuhq/virtu/internal/app/store/volunteers"
	"github.com/virtuhq/virtu/internal/app/system/auth"
	"github.com/virtuhq/virtu/internal/app/system/normalize"
	"github.com/virtuhq/virtu/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Handler handles Google OAuth authentication for volunteers.
//
// The ?mode= query parameter on /auth/google records whether the visitor
// clicked Register or Sign In. It is advisory only: the callback decides the
// real path from whether the Google email already has a volunteer profile.
type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	Volunteers *volunteers.Store
	Logins     *loginrecords.Store
	StateStore *oauthstate.Store

	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g. "https://virtu.example.com/auth/google/callback"

	// Endpoint and UserInfoURL default to Google's; tests point them at a
	// local fake provider.
	Endpoint    oauth2.Endpoint
	UserInfoURL string
}

// NewHandler creates a new Google OAuth handler.
func NewHandler(
	db *mongo.Database,
	sessionMgr *auth.SessionManager,
	stateStore *oauthstate.Store,
	clientID, clientSecret, baseURL string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Log:          logger,
		SessionMgr:   sessionMgr,
		Volunteers:   volunteers.New(db),
		Logins:       loginrecords.New(db),
		StateStore:   stateStore,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  baseURL + "/auth/google/callback",
		Endpoint:     google.Endpoint,
		UserInfoURL:  "https://www.googleapis.com/oauth2/v2/userinfo",
	}
}

// oauth2Config returns the Google OAuth2 configuration.
func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: h.Endpoint,
	}
}

// IsConfigured returns true if Google OAuth is configured.
func (h *Handler) IsConfigured() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google?mode=register|signin                                        |
| Initiates the Google OAuth flow by redirecting to Google's consent screen.   |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeStart(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("Google OAuth not configured")
		http.Redirect(w, r, "/?error=google_not_configured", http.StatusSeeOther)
		return
	}

	mode := auth.NormalizeMode(query.Get(r, "mode"))

	// Record the requested mode in the session for the UI; the state record
	// is what the callback actually reads.
	if err := h.SessionMgr.SetMode(w, r, mode); err != nil {
		h.Log.Warn("failed to record auth mode in session", zap.Error(err))
	}

	state, err := generateState()
	if err != nil {
		h.Log.Error("failed to generate OAuth state", zap.Error(err))
		http.Redirect(w, r, "/?error=internal", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	expiresAt := time.Now().UTC().Add(10 * time.Minute)
	if err := h.StateStore.Save(ctx, state, mode, expiresAt); err != nil {
		h.Log.Error("failed to save OAuth state", zap.Error(err))
		http.Redirect(w, r, "/?error=internal", http.StatusSeeOther)
		return
	}

	authURL := h.oauth2Config().AuthCodeURL(state, oauth2.AccessTypeOffline)

	h.Log.Debug("initiating Google OAuth flow",
		zap.String("mode", mode),
		zap.String("redirect_url", authURL))

	http.Redirect(w, r, authURL, http.StatusTemporaryRedirect)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google/callback                                                    |
| Exchanges the code, fetches the Google profile, and reconciles the requested |
| mode against the volunteers collection: a known email signs in, an unknown   |
| email is sent to /complete-profile regardless of which button was clicked.   |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.Log.Warn("Google OAuth error",
			zap.String("error", errParam),
			zap.String("description", r.URL.Query().Get("error_description")))
		http.Redirect(w, r, "/?error=google_denied", http.StatusSeeOther)
		return
	}

	state := r.URL.Query().Get("state")
	if state == "" {
		h.Log.Warn("missing OAuth state parameter")
		http.Redirect(w, r, "/?error=invalid_state", http.StatusSeeOther)
		return
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	requestedMode, valid, err := h.StateStore.Validate(ctxTimeout, state)
	if err != nil {
		h.Log.Error("failed to validate OAuth state", zap.Error(err))
		http.Redirect(w, r, "/?error=internal", http.StatusSeeOther)
		return
	}
	if !valid {
		h.Log.Warn("invalid or expired OAuth state")
		http.Redirect(w, r, "/?error=invalid_state", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.Log.Warn("missing OAuth code parameter")
		http.Redirect(w, r, "/?error=invalid_code", http.StatusSeeOther)
		return
	}

	token, err := h.oauth2Config().Exchange(ctx, code)
	if err != nil {
		h.Log.Error("failed to exchange OAuth code", zap.Error(err))
		http.Redirect(w, r, "/?error=token_exchange", http.StatusSeeOther)
		return
	}

	googleUser, err := h.fetchUserInfo(ctx, token)
	if err != nil {
		h.Log.Error("failed to fetch Google user info", zap.Error(err))
		http.Redirect(w, r, "/?error=user_info", http.StatusSeeOther)
		return
	}

	email := normalize.Email(googleUser.Email)
	if email == "" {
		h.Log.Warn("Google user info has no email")
		http.Redirect(w, r, "/?error=user_info", http.StatusSeeOther)
		return
	}

	// The exchange and userinfo fetch may have eaten most of the first
	// window; the database work gets its own.
	dbCtx, dbCancel := context.WithTimeout(ctx, timeouts.Short())
	defer dbCancel()

	vol, err := h.Volunteers.GetByEmail(dbCtx, email)
	if err == mongo.ErrNoDocuments {
		// No profile for this email, so registration is the only sensible
		// path even if the visitor clicked Sign In. Nothing is persisted
		// until the profile form is submitted.
		h.Log.Info("Google sign-in for unknown email, routing to registration",
			zap.String("email", email),
			zap.String("requested_mode", requestedMode))

		// The session hint follows the decided path, not the clicked button.
		if err := h.SessionMgr.SetMode(w, r, auth.ModeRegister); err != nil {
			h.Log.Warn("failed to record register mode in session", zap.Error(err))
		}

		q := url.Values{}
		q.Set("email", email)
		q.Set("name", normalize.Name(googleUser.Name))
		http.Redirect(w, r, "/complete-profile?"+q.Encode(), http.StatusSeeOther)
		return
	}
	if err != nil {
		h.Log.Error("volunteer lookup failed", zap.Error(err), zap.String("email", email))
		http.Redirect(w, r, "/?error=internal", http.StatusSeeOther)
		return
	}

	// Profile exists: sign in, even if the visitor clicked Register.
	if err := h.SessionMgr.SignIn(w, r, vol.ID.Hex(), auth.ModeSignIn); err != nil {
		h.Log.Error("save session failed", zap.Error(err), zap.String("email", email))
		http.Redirect(w, r, "/?error=session", http.StatusSeeOther)
		return
	}

	if err := h.Logins.Record(dbCtx, vol.ID, vol.Email, "google"); err != nil {
		h.Log.Warn("failed to write login record", zap.Error(err),
			zap.String("volunteer_id", vol.ID.Hex()))
	}

	h.Log.Info("volunteer signed in via Google OAuth",
		zap.String("volunteer_id", vol.ID.Hex()),
		zap.String("requested_mode", requestedMode))

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Helpers                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// googleUserInfo represents user info returned from Google.
type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// fetchUserInfo retrieves the profile from the provider's userinfo endpoint.
func (h *Handler) fetchUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get(h.UserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}

	return &info, nil
}

// generateState creates a cryptographically secure random state string.
func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
