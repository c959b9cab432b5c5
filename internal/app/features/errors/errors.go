// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/virtuhq/virtu/internal/app/system/auth"
)

// pageData is the basic view model for error pages.
type pageData struct {
	Title      string
	IsLoggedIn bool
	UserName   string
	Message    string
	BackURL    string
}

// Handler is the errors feature handler.
// No DB needed; it just renders templates.
type Handler struct{}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// NotFound renders a friendly "page not found" page. Mounted as the
// router's NotFound handler.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	u, signedIn := auth.CurrentUser(r)
	name := ""
	if signedIn && u != nil {
		name = u.Name
	}

	data := pageData{
		Title:      "Page not found",
		IsLoggedIn: signedIn,
		UserName:   name,
		Message:    "The page you were looking for doesn't exist.",
		BackURL:    "/",
	}

	w.WriteHeader(http.StatusNotFound)
	templates.Render(w, r, "error_page", data)
}
