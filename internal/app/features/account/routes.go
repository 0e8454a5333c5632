// internal/app/features/account/routes.go
package account

import (
	"github.com/dalemusser/planora/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts under /api/auth. The Google routes are mounted separately
// by the authgoogle feature on the same prefix.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Post("/register", h.HandleRegister)
	r.Post("/login", h.HandleLogin)
	r.Post("/logout", h.HandleLogout)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/me", h.ServeMe)
		pr.Get("/logins", h.ServeLogins)
		pr.Get("/activity", h.ServeActivity)
	})
	return r
}
