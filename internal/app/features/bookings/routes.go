// internal/app/features/bookings/routes.go
package bookings

import (
	"github.com/dalemusser/planora/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Get("/{id}", h.ServeBooking)
	r.Put("/{id}/cancel", h.HandleCancel)
	r.Delete("/{id}", h.HandleDelete)
	return r
}
