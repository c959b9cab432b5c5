// internal/app/features/opportunities/handler.go
package opportunities

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	uierrors "github.com/virtuhq/virtu/internal/app/features/errors"
	oppstore "github.com/virtuhq/virtu/internal/app/store/opportunities"
	"github.com/virtuhq/virtu/internal/app/system/auth"
	"github.com/virtuhq/virtu/internal/app/system/categories"
	"github.com/virtuhq/virtu/internal/app/system/htmlsanitize"
	"github.com/virtuhq/virtu/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the opportunity pages and the JSON management endpoints.
type Handler struct {
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
	Store  *oppstore.Store
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:    logger,
		ErrLog: errLog,
		Store:  oppstore.New(db),
	}
}

// listItemVM is one opportunity prepared for HTML display. User-entered
// text is sanitized here, not in the store, so the JSON API returns the
// fields verbatim.
type listItemVM struct {
	ID          string
	Title       string
	Description string
	Location    string
	Category    []string
	PostedBy    string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /opportunities – full listing                                            |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	all, err := h.Store.List(ctx, nil, 0)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list opportunities failed", err,
			"Could not load opportunities right now.", "/")
		return
	}

	items := make([]listItemVM, 0, len(all))
	for _, op := range all {
		items = append(items, listItemVM{
			ID:          op.ID.Hex(),
			Title:       htmlsanitize.Text(op.Title),
			Description: htmlsanitize.Text(op.Description),
			Location:    htmlsanitize.Text(op.Location),
			Category:    op.Category,
			PostedBy:    htmlsanitize.Text(op.PostedBy),
		})
	}

	_, signedIn := auth.CurrentUser(r)

	data := struct {
		Title         string
		IsLoggedIn    bool
		Opportunities []listItemVM
	}{
		Title:         "Volunteering opportunities",
		IsLoggedIn:    signedIn,
		Opportunities: items,
	}

	templates.Render(w, r, "opportunities", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /opportunities/create – posting form                                     |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeCreateForm(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Title      string
		Categories []string
	}{
		Title:      "Post an opportunity",
		Categories: categories.All,
	}

	templates.Render(w, r, "opportunity_form", data)
}
