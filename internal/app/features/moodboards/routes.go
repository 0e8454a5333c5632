// internal/app/features/moodboards/routes.go
package moodboards

import (
	"github.com/dalemusser/planora/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router mounted at /api/moodboards.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Get("/public", h.ServePublic)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Post("/", h.HandleCreate)
		pr.Get("/user", h.ServeMine)

		pr.Get("/{id}", h.ServeBoard)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Delete("/{id}", h.HandleDelete)

		// COLLABORATORS
		pr.Post("/{id}/collaborators", h.HandleInvite)
		pr.Put("/{id}/collaborators/status", h.HandleRespond)
		pr.Delete("/{id}/collaborators/{collaboratorId}", h.HandleRemove)
		pr.Get("/{id}/activity", h.ServeActivity)

		// MESSAGES
		pr.Post("/{id}/messages", h.HandlePostMessage)
		pr.Get("/{id}/messages", h.ServeMessages)
	})

	return r
}
