// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/virtuhq/virtu/internal/app/system/auth"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
}

func NewHandler(sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
	}
}

// ServeLogout handles GET /logout. Save failures are logged but the
// redirect is issued regardless; the volunteer always lands back home.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Error("logout: expire session failed", zap.Error(err))
	}

	http.Redirect(w, r, "/?message=You+have+been+signed+out", http.StatusSeeOther)
}
