// internal/app/features/errors/errlog.go
package errors

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/virtuhq/virtu/internal/app/system/auth"
	"go.uber.org/zap"
)

// ErrorLogger couples structured logging with a user-facing error page so
// handlers don't repeat the log-then-render dance.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger on the given zap logger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

// LogBadRequest logs a client error and renders a 400 error page.
// logMsg goes to the log; userMsg is shown to the user.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.log.Warn(logMsg, zap.Error(err), zap.String("path", r.URL.Path))
	e.render(w, r, http.StatusBadRequest, "Invalid request", userMsg, backURL)
}

// LogNotFound logs a lookup miss and renders a 404 error page.
func (e *ErrorLogger) LogNotFound(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.log.Warn(logMsg, zap.Error(err), zap.String("path", r.URL.Path))
	e.render(w, r, http.StatusNotFound, "Not found", userMsg, backURL)
}

// LogServerError logs an internal error and renders a 500 error page.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.log.Error(logMsg, zap.Error(err), zap.String("path", r.URL.Path))
	e.render(w, r, http.StatusInternalServerError, "Something went wrong", userMsg, backURL)
}

func (e *ErrorLogger) render(w http.ResponseWriter, r *http.Request, status int, title, userMsg, backURL string) {
	u, signedIn := auth.CurrentUser(r)
	name := ""
	if signedIn && u != nil {
		name = u.Name
	}
	if backURL == "" {
		backURL = "/"
	}

	data := pageData{
		Title:      title,
		IsLoggedIn: signedIn,
		UserName:   name,
		Message:    userMsg,
		BackURL:    backURL,
	}

	w.WriteHeader(status)
	templates.Render(w, r, "error_page", data)
}
