package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/virtuhq/virtu/internal/app/system/auth"
	"go.uber.org/zap"
)

func newTestSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager(
		"test-session-key-must-be-32-chars-long",
		"test-session",
		"",
		24*time.Hour,
		false,
		zap.NewNop(),
	)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}
	return sm
}

func TestNewSessionManager_EmptyKey(t *testing.T) {
	_, err := auth.NewSessionManager("", "s", "", time.Hour, false, zap.NewNop())
	if err == nil {
		t.Fatal("expected error for empty session key")
	}
}

func TestNormalizeMode(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"register", auth.ModeRegister},
		{" REGISTER ", auth.ModeRegister},
		{"signin", auth.ModeSignIn},
		{"", auth.ModeSignIn},
		{"bogus", auth.ModeSignIn},
	}
	for _, tt := range tests {
		if got := auth.NormalizeMode(tt.input); got != tt.want {
			t.Errorf("NormalizeMode(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestRequireSignedIn_NoUser_RedirectsHome(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/dashboard", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("expected redirect to /, got %q", loc)
	}
}

func TestRequireSignedIn_NoUser_API_Returns401(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/data", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestRequireSignedIn_WithUser_Passes(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := auth.CurrentUser(r)
		if !ok || u.Email != "v@example.com" {
			t.Error("expected session user in context")
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/dashboard", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{ID: "abc", Name: "Vol", Email: "v@example.com"})
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}

func TestSignInThenLoadSessionUser(t *testing.T) {
	sm := newTestSessionManager(t)

	// Sign in and capture the cookie.
	signInRec := httptest.NewRecorder()
	signInReq := httptest.NewRequest("GET", "/auth/google/callback", nil)
	if err := sm.SignIn(signInRec, signInReq, "profile-123", auth.ModeRegister); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	cookies := signInRec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("SignIn set no cookies")
	}

	// Replay the cookie through LoadSessionUser with no fetcher:
	// the user should appear in context with the bare profile ID.
	var got *auth.SessionUser
	handler := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
	}))

	req := httptest.NewRequest("GET", "/dashboard", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil {
		t.Fatal("expected session user in context after sign-in")
	}
	if got.ID != "profile-123" {
		t.Errorf("profile ID: got %q, want %q", got.ID, "profile-123")
	}
	if mode := sm.Mode(req); mode != auth.ModeRegister {
		t.Errorf("mode: got %q, want %q", mode, auth.ModeRegister)
	}
}

type fakeFetcher struct{ u *auth.SessionUser }

func (f *fakeFetcher) FetchProfile(_ context.Context, id string) *auth.SessionUser {
	if f.u != nil && f.u.ID == id {
		return f.u
	}
	return nil
}

func TestLoadSessionUser_FetcherMiss_Anonymous(t *testing.T) {
	sm := newTestSessionManager(t)
	sm.SetProfileFetcher(&fakeFetcher{}) // knows no profiles

	signInRec := httptest.NewRecorder()
	if err := sm.SignIn(signInRec, httptest.NewRequest("GET", "/", nil), "gone", auth.ModeSignIn); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}

	handler := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.CurrentUser(r); ok {
			t.Error("deleted profile should not produce a session user")
		}
	}))

	req := httptest.NewRequest("GET", "/dashboard", nil)
	for _, c := range signInRec.Result().Cookies() {
		req.AddCookie(c)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)
}

func TestSignOut_ExpiresCookie(t *testing.T) {
	sm := newTestSessionManager(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/logout", nil)
	if err := sm.SignOut(rec, req); err != nil {
		t.Fatalf("SignOut failed: %v", err)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("SignOut set no cookies")
	}
	if cookies[0].MaxAge != -1 {
		t.Errorf("expected MaxAge -1 on deletion cookie, got %d", cookies[0].MaxAge)
	}
}
