// internal/app/features/posts/routes.go
package posts

import (
	"github.com/dalemusser/planora/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// public
	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServePost)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Post("/", h.HandleCreate)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Delete("/{id}", h.HandleDelete)
		pr.Post("/{id}/like", h.HandleLike)
	})
	return r
}
