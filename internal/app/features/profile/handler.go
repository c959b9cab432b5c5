// internal/app/features/profile/handler.go
package profile

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	uierrors "github.com/virtuhq/virtu/internal/app/features/errors"
	"github.com/virtuhq/virtu/internal/app/store/loginrecords"
	"github.com/virtuhq/virtu/internal/app/store/volunteers"
	"github.com/virtuhq/virtu/internal/app/system/auth"
	"github.com/virtuhq/virtu/internal/app/system/categories"
	"github.com/virtuhq/virtu/internal/app/system/htmlsanitize"
	"github.com/virtuhq/virtu/internal/app/system/timeouts"
	"github.com/virtuhq/virtu/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the volunteer profile pages: the post-OAuth registration
// form, profile editing, and account deletion.
type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	Volunteers *volunteers.Store
	Logins     *loginrecords.Store
}

func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		Volunteers: volunteers.New(db),
		Logins:     loginrecords.New(db),
	}
}

// formVM is the view model shared by the registration and edit forms.
type formVM struct {
	Title      string
	Action     string
	Email      string
	Name       string
	Age        string
	Selected   map[string]bool
	Categories []string
	Error      string
	Message    string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /complete-profile – registration form after Google auth                  |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeCompleteProfile renders the registration form, prefilled with the
// email and name carried over from the Google callback.
func (h *Handler) ServeCompleteProfile(w http.ResponseWriter, r *http.Request) {
	data := formVM{
		Title:      "Complete your profile",
		Action:     "/complete-profile",
		Email:      htmlsanitize.Text(query.Get(r, "email")),
		Name:       htmlsanitize.Text(query.Get(r, "name")),
		Age:        htmlsanitize.Text(query.Get(r, "age")),
		Selected:   map[string]bool{},
		Categories: categories.All,
		Error:      inlineError(query.Get(r, "error")),
	}

	templates.Render(w, r, "complete_profile", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /edit-profile – edit form for the signed-in volunteer                    |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeEditProfile renders the edit form from a fresh store read so a stale
// session never shows stale profile data.
func (h *Handler) ServeEditProfile(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	vol, err := h.loadVolunteer(ctx, u.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load profile for edit failed", err,
			"Could not load your profile.", "/dashboard")
		return
	}

	selected := make(map[string]bool, len(vol.Preferences))
	for _, p := range vol.Preferences {
		selected[p] = true
	}
	age := ""
	if vol.Age != nil {
		age = strconv.Itoa(*vol.Age)
	}

	data := formVM{
		Title:      "Edit your profile",
		Action:     "/edit-profile",
		Email:      vol.Email,
		Name:       vol.Name,
		Age:        age,
		Selected:   selected,
		Categories: categories.All,
		Error:      inlineError(query.Get(r, "error")),
		Message:    htmlsanitize.Text(query.Get(r, "message")),
	}

	templates.Render(w, r, "edit_profile", data)
}

// loadVolunteer resolves the session profile id to a fresh store record.
func (h *Handler) loadVolunteer(ctx context.Context, profileID string) (*models.Volunteer, error) {
	oid, err := primitive.ObjectIDFromHex(profileID)
	if err != nil {
		return nil, err
	}
	return h.Volunteers.GetByID(ctx, oid)
}

// inlineError maps an error code from the query string to user-facing text.
func inlineError(code string) string {
	switch code {
	case "":
		return ""
	case "missing_fields":
		return "Email, name, and age are all required."
	case "invalid_age":
		return "Age must be a positive number."
	case "invalid_preferences":
		return "One or more selected preferences are not recognized."
	case "save_failed":
		return "Saving your profile failed. Please try again."
	case "delete_failed":
		return "Deleting your account failed. Please try again."
	default:
		return "Something went wrong. Please try again."
	}
}
