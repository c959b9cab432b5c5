package authgoogle_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/virtuhq/virtu/internal/app/features/authgoogle"
	"github.com/virtuhq/virtu/internal/app/store/loginrecords"
	"github.com/virtuhq/virtu/internal/app/store/oauthstate"
	"github.com/virtuhq/virtu/internal/app/system/auth"
	"github.com/virtuhq/virtu/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const testSessionKey = "0123456789abcdef0123456789abcdef"

func newTestHandler(t *testing.T) (*authgoogle.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	sm, err := auth.NewSessionManager(testSessionKey, "virtu_session", "", 24*time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}

	h := authgoogle.NewHandler(db, sm, oauthstate.New(db),
		"client-id", "client-secret", "http://localhost:8080", logger)
	return h, db
}

func redirectTarget(t *testing.T, rec *httptest.ResponseRecorder) *url.URL {
	t.Helper()
	loc := rec.Header().Get("Location")
	if loc == "" {
		t.Fatalf("expected a redirect, got status %d with no Location", rec.Code)
	}
	u, err := url.Parse(loc)
	if err != nil {
		t.Fatalf("bad Location %q: %v", loc, err)
	}
	return u
}

func TestServeStart_NotConfigured(t *testing.T) {
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	sm, err := auth.NewSessionManager(testSessionKey, "virtu_session", "", 24*time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	h := authgoogle.NewHandler(db, sm, oauthstate.New(db), "", "", "http://localhost:8080", logger)

	req := httptest.NewRequest("GET", "/auth/google?mode=register", nil)
	rec := httptest.NewRecorder()
	h.ServeStart(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if got := rec.Header().Get("Location"); got != "/?error=google_not_configured" {
		t.Errorf("Location: got %q", got)
	}
}

func TestServeStart_RedirectsToGoogleAndPersistsState(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	req := httptest.NewRequest("GET", "/auth/google?mode=signin", nil)
	rec := httptest.NewRecorder()
	h.ServeStart(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusTemporaryRedirect)
	}

	dest := redirectTarget(t, rec)
	if dest.Host != "accounts.google.com" {
		t.Errorf("redirect host: got %q", dest.Host)
	}
	state := dest.Query().Get("state")
	if state == "" {
		t.Fatal("consent URL carries no state parameter")
	}

	mode, valid, err := oauthstate.New(db).Validate(ctx, state)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if !valid {
		t.Fatal("state was not persisted")
	}
	if mode != auth.ModeSignIn {
		t.Errorf("stored mode: got %q, want %q", mode, auth.ModeSignIn)
	}
}

func TestServeStart_NormalizesUnknownMode(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	req := httptest.NewRequest("GET", "/auth/google?mode=bogus", nil)
	rec := httptest.NewRecorder()
	h.ServeStart(rec, req)

	state := redirectTarget(t, rec).Query().Get("state")
	mode, valid, err := oauthstate.New(db).Validate(ctx, state)
	if err != nil || !valid {
		t.Fatalf("Validate: mode=%q valid=%v err=%v", mode, valid, err)
	}
	if mode != auth.ModeSignIn {
		t.Errorf("unknown mode should normalize to %q, got %q", auth.ModeSignIn, mode)
	}
}

func TestServeCallback_ProviderError(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest("GET", "/auth/google/callback?error=access_denied", nil)
	rec := httptest.NewRecorder()
	h.ServeCallback(rec, req)

	if got := rec.Header().Get("Location"); got != "/?error=google_denied" {
		t.Errorf("Location: got %q", got)
	}
}

func TestServeCallback_MissingState(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest("GET", "/auth/google/callback", nil)
	rec := httptest.NewRecorder()
	h.ServeCallback(rec, req)

	if got := rec.Header().Get("Location"); got != "/?error=invalid_state" {
		t.Errorf("Location: got %q", got)
	}
}

func TestServeCallback_UnknownState(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest("GET", "/auth/google/callback?state=never-issued", nil)
	rec := httptest.NewRecorder()
	h.ServeCallback(rec, req)

	if got := rec.Header().Get("Location"); got != "/?error=invalid_state" {
		t.Errorf("Location: got %q", got)
	}
}

// fakeProvider stands in for Google's token and userinfo endpoints so the
// callback's reconciliation logic can run end to end.
func fakeProvider(t *testing.T, h *authgoogle.Handler, email, name string) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"test-token","token_type":"Bearer","expires_in":3600}`)
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"email": email, "name": name})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	h.Endpoint = oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"}
	h.UserInfoURL = srv.URL + "/userinfo"
}

func TestServeCallback_UnknownEmailRoutesToRegistration(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fakeProvider(t, h, "New.Person@Example.com", "  New Person  ")

	// The visitor clicked Sign In, but no profile exists for the email.
	if err := oauthstate.New(db).Save(ctx, "fresh-state", auth.ModeSignIn, time.Now().UTC().Add(10*time.Minute)); err != nil {
		t.Fatalf("Save state failed: %v", err)
	}

	req := httptest.NewRequest("GET", "/auth/google/callback?state=fresh-state&code=good-code", nil)
	rec := httptest.NewRecorder()
	h.ServeCallback(rec, req)

	dest := redirectTarget(t, rec)
	if dest.Path != "/complete-profile" {
		t.Fatalf("redirect path: got %q, want /complete-profile", dest.Path)
	}
	if got := dest.Query().Get("email"); got != "new.person@example.com" {
		t.Errorf("prefill email: got %q", got)
	}
	if got := dest.Query().Get("name"); got != "New Person" {
		t.Errorf("prefill name: got %q", got)
	}

	// Nothing is persisted until the profile form is submitted.
	n, err := db.Collection("volunteers").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if n != 0 {
		t.Errorf("callback created %d volunteer(s); registration must wait for the form", n)
	}

	// The session hint now says register regardless of the clicked button.
	next := httptest.NewRequest("GET", "/complete-profile", nil)
	for _, c := range rec.Result().Cookies() {
		next.AddCookie(c)
	}
	if mode := h.SessionMgr.Mode(next); mode != auth.ModeRegister {
		t.Errorf("session mode after unknown-email callback: got %q, want %q", mode, auth.ModeRegister)
	}
}

func TestServeCallback_KnownEmailSignsInDespiteRegisterMode(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	email := testutil.UniqueEmail("known")
	fx := testutil.NewFixtures(t, db)
	vol := fx.CreateVolunteer(ctx, "Existing", email, []string{"Education"})

	fakeProvider(t, h, email, "Existing")

	// The visitor clicked Register, but the email already has a profile.
	if err := oauthstate.New(db).Save(ctx, "reg-state", auth.ModeRegister, time.Now().UTC().Add(10*time.Minute)); err != nil {
		t.Fatalf("Save state failed: %v", err)
	}

	req := httptest.NewRequest("GET", "/auth/google/callback?state=reg-state&code=good-code", nil)
	rec := httptest.NewRecorder()
	h.ServeCallback(rec, req)

	if got := rec.Header().Get("Location"); got != "/dashboard" {
		t.Fatalf("Location: got %q, want /dashboard", got)
	}

	var sessionCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "virtu_session" {
			sessionCookie = c
		}
	}
	if sessionCookie == nil {
		t.Fatal("no session cookie set on sign-in")
	}

	recs, err := loginrecords.New(db).Recent(ctx, vol.ID, 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recs) != 1 {
		t.Errorf("login records: got %d, want 1", len(recs))
	}
}

func TestServeCallback_MissingCode(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := oauthstate.New(db).Save(ctx, "known-state", auth.ModeRegister, time.Now().UTC().Add(10*time.Minute)); err != nil {
		t.Fatalf("Save state failed: %v", err)
	}

	req := httptest.NewRequest("GET", "/auth/google/callback?state=known-state", nil)
	rec := httptest.NewRecorder()
	h.ServeCallback(rec, req)

	if got := rec.Header().Get("Location"); got != "/?error=invalid_code" {
		t.Errorf("Location: got %q", got)
	}
}
