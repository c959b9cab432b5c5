package testutil

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/virtuhq/virtu/internal/app/system/auth"
	"github.com/virtuhq/virtu/internal/domain/models"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that call chi.URLParam directly.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// WithVolunteer injects a signed-in session user built from the volunteer
// record, bypassing the session middleware.
func WithVolunteer(r *http.Request, v models.Volunteer) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{
		ID:          v.ID.Hex(),
		Name:        v.Name,
		Email:       v.Email,
		Preferences: v.Preferences,
	})
}
