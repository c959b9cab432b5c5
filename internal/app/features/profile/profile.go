// internal/app/features/profile/profile.go
package profile

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/virtuhq/virtu/internal/app/store/volunteers"
	"github.com/virtuhq/virtu/internal/app/system/auth"
	"github.com/virtuhq/virtu/internal/app/system/categories"
	"github.com/virtuhq/virtu/internal/app/system/normalize"
	"github.com/virtuhq/virtu/internal/app/system/timeouts"
	"github.com/virtuhq/virtu/internal/domain/models"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| POST /complete-profile – create the volunteer and sign in                    |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleCompleteProfile validates the registration form and creates the
// volunteer profile. A duplicate email means the visitor already has a
// profile; they are signed in to it instead of being shown an error.
func (h *Handler) HandleCompleteProfile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.Log.Warn("parse registration form failed", zap.Error(err))
		http.Redirect(w, r, "/complete-profile?error=missing_fields", http.StatusSeeOther)
		return
	}

	email := normalize.Email(r.FormValue("email"))
	name := normalize.Name(r.FormValue("name"))
	ageStr := r.FormValue("age")
	// A single checked box arrives as a scalar; r.Form's slice access makes
	// it a one-element set either way.
	prefs := r.Form["preferences"]

	back := func(code string) string {
		q := url.Values{}
		q.Set("error", code)
		q.Set("email", email)
		q.Set("name", name)
		return "/complete-profile?" + q.Encode()
	}

	if email == "" || name == "" || ageStr == "" {
		http.Redirect(w, r, back("missing_fields"), http.StatusSeeOther)
		return
	}
	age, err := strconv.Atoi(ageStr)
	if err != nil || age <= 0 {
		http.Redirect(w, r, back("invalid_age"), http.StatusSeeOther)
		return
	}
	if bad := categories.Invalid(prefs); len(bad) > 0 {
		h.Log.Warn("registration with unknown preferences", zap.Strings("labels", bad))
		http.Redirect(w, r, back("invalid_preferences"), http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	vol, err := h.Volunteers.Create(ctx, models.Volunteer{
		Name:        name,
		Email:       email,
		Age:         &age,
		Preferences: prefs,
	})
	if err == volunteers.ErrDuplicateEmail {
		h.signInExisting(ctx, w, r, email)
		return
	}
	if err != nil {
		h.Log.Error("create volunteer failed", zap.Error(err), zap.String("email", email))
		http.Redirect(w, r, back("save_failed"), http.StatusSeeOther)
		return
	}

	if err := h.SessionMgr.SignIn(w, r, vol.ID.Hex(), auth.ModeRegister); err != nil {
		h.Log.Error("save session after registration failed", zap.Error(err))
		http.Redirect(w, r, "/?error=session", http.StatusSeeOther)
		return
	}
	if err := h.Logins.Record(ctx, vol.ID, vol.Email, "google"); err != nil {
		h.Log.Warn("failed to write login record", zap.Error(err))
	}

	h.Log.Info("volunteer registered", zap.String("volunteer_id", vol.ID.Hex()))
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// signInExisting handles the register-but-already-registered race: the email
// gained a profile between the OAuth callback and the form submit.
func (h *Handler) signInExisting(ctx context.Context, w http.ResponseWriter, r *http.Request, email string) {
	vol, err := h.Volunteers.GetByEmail(ctx, email)
	if err != nil {
		h.Log.Error("lookup after duplicate email failed", zap.Error(err), zap.String("email", email))
		http.Redirect(w, r, "/?error=internal", http.StatusSeeOther)
		return
	}
	if err := h.SessionMgr.SignIn(w, r, vol.ID.Hex(), auth.ModeSignIn); err != nil {
		h.Log.Error("save session failed", zap.Error(err))
		http.Redirect(w, r, "/?error=session", http.StatusSeeOther)
		return
	}
	if err := h.Logins.Record(ctx, vol.ID, vol.Email, "google"); err != nil {
		h.Log.Warn("failed to write login record", zap.Error(err))
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /edit-profile – overwrite name, age, preferences                        |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleEditProfile(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.Log.Warn("parse edit form failed", zap.Error(err))
		http.Redirect(w, r, "/edit-profile?error=save_failed", http.StatusSeeOther)
		return
	}

	name := normalize.Name(r.FormValue("name"))
	if name == "" {
		http.Redirect(w, r, "/edit-profile?error=missing_fields", http.StatusSeeOther)
		return
	}

	var age *int
	if ageStr := r.FormValue("age"); ageStr != "" {
		n, err := strconv.Atoi(ageStr)
		if err != nil || n <= 0 {
			http.Redirect(w, r, "/edit-profile?error=invalid_age", http.StatusSeeOther)
			return
		}
		age = &n
	}

	prefs := r.Form["preferences"]
	if bad := categories.Invalid(prefs); len(bad) > 0 {
		h.Log.Warn("edit with unknown preferences", zap.Strings("labels", bad))
		http.Redirect(w, r, "/edit-profile?error=invalid_preferences", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Volunteers.Update(ctx, u.Email, volunteers.ProfileUpdate{
		Name:        name,
		Age:         age,
		Preferences: prefs,
	}); err != nil {
		h.Log.Error("update profile failed", zap.Error(err), zap.String("email", u.Email))
		http.Redirect(w, r, "/edit-profile?error=save_failed", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/dashboard?message=Profile+updated", http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /delete-account – remove the profile, then end the session              |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleDeleteAccount deletes the volunteer record before touching the
// session. A failed delete leaves the session intact so the volunteer can
// retry; the session is only destroyed once the record is gone.
func (h *Handler) HandleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Volunteers.DeleteByEmail(ctx, u.Email); err != nil {
		h.Log.Error("delete account failed", zap.Error(err), zap.String("email", u.Email))
		http.Redirect(w, r, "/edit-profile?error=delete_failed", http.StatusSeeOther)
		return
	}

	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Error("sign out after account deletion failed", zap.Error(err))
	}

	h.Log.Info("volunteer account deleted", zap.String("email", u.Email))
	http.Redirect(w, r, "/?message=Your+account+has+been+deleted", http.StatusSeeOther)
}
