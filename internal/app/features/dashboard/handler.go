// internal/app/features/dashboard/handler.go
package dashboard

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	uierrors "github.com/virtuhq/virtu/internal/app/features/errors"
	"github.com/virtuhq/virtu/internal/app/store/loginrecords"
	"github.com/virtuhq/virtu/internal/app/store/opportunities"
	"github.com/virtuhq/virtu/internal/app/system/auth"
	"github.com/virtuhq/virtu/internal/app/system/htmlsanitize"
	"github.com/virtuhq/virtu/internal/app/system/timeouts"
	"github.com/virtuhq/virtu/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// recommendationLimit caps how many matched opportunities the dashboard shows.
const recommendationLimit = 5

// recentLoginLimit caps the sign-in history shown on the dashboard.
const recentLoginLimit = 5

// Handler serves the signed-in volunteer's dashboard.
type Handler struct {
	Log           *zap.Logger
	ErrLog        *uierrors.ErrorLogger
	Opportunities *opportunities.Store
	Logins        *loginrecords.Store
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:           logger,
		ErrLog:        errLog,
		Opportunities: opportunities.New(db),
		Logins:        loginrecords.New(db),
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /dashboard                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeDashboard greets the volunteer and shows up to five opportunities
// whose category overlaps their preferences. A volunteer with no
// preferences gets no recommendations; the page points them at their
// profile instead.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	// Always intersect, even when the set is empty: the store treats nil as
	// unrestricted, which is the browse page's contract, not the dashboard's.
	prefs := u.Preferences
	if prefs == nil {
		prefs = []string{}
	}

	matches, err := h.Opportunities.List(ctx, prefs, recommendationLimit)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load recommendations failed", err,
			"Could not load opportunities right now.", "/")
		return
	}

	recent := h.recentLogins(ctx, u.ID)

	data := struct {
		Title         string
		UserName      string
		Preferences   []string
		Opportunities []models.Opportunity
		RecentLogins  []models.LoginRecord
		Message       string
	}{
		Title:         "Your dashboard",
		UserName:      u.Name,
		Preferences:   htmlsanitize.Slice(prefs),
		Opportunities: matches,
		RecentLogins:  recent,
		Message:       htmlsanitize.Text(query.Get(r, "message")),
	}

	templates.Render(w, r, "dashboard", data)
}

// recentLogins loads the sign-in history panel. Failures degrade to an empty
// panel rather than a server error.
func (h *Handler) recentLogins(ctx context.Context, profileID string) []models.LoginRecord {
	oid, err := primitive.ObjectIDFromHex(profileID)
	if err != nil {
		return nil
	}
	recent, err := h.Logins.Recent(ctx, oid, recentLoginLimit)
	if err != nil {
		h.Log.Warn("load login history failed", zap.Error(err))
		return nil
	}
	return recent
}
