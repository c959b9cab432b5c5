package home

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/virtuhq/virtu/internal/app/system/auth"
	"github.com/virtuhq/virtu/internal/app/system/htmlsanitize"
	"go.uber.org/zap"
)

// Handler holds dependencies needed to serve the landing page.
type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET / – landing                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeRoot renders the landing page with the Register and Sign In entry
// points. Inline error/message text arrives via the query string from auth
// redirects and is sanitized before it reaches the page.
func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	u, signedIn := auth.CurrentUser(r)
	name := ""
	if signedIn && u != nil {
		name = u.Name
	}

	data := struct {
		Title      string
		IsLoggedIn bool
		UserName   string
		Error      string
		Message    string
	}{
		Title:      "Welcome",
		IsLoggedIn: signedIn,
		UserName:   name,
		Error:      htmlsanitize.Text(query.Get(r, "error")),
		Message:    htmlsanitize.Text(query.Get(r, "message")),
	}

	templates.Render(w, r, "home", data)
}
