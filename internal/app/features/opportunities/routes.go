// internal/app/features/opportunities/routes.go
package opportunities

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Get("/create", h.ServeCreateForm)
	r.Post("/create", h.HandleCreate)
	r.Put("/edit/{id}", h.HandleUpdate)
	r.Delete("/delete/{id}", h.HandleDelete)

	return r
}
