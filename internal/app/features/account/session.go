// internal/app/features/account/session.go
package account

import (
	"errors"
	"net/http"

	"github.com/dalemusser/planora/internal/app/store/audit"
	"github.com/dalemusser/planora/internal/app/system/apiresp"
	"github.com/dalemusser/planora/internal/app/system/apperr"
	"github.com/dalemusser/planora/internal/app/system/auth"
	"github.com/dalemusser/planora/internal/app/system/authz"
	"github.com/dalemusser/planora/internal/app/system/paging"
	"go.mongodb.org/mongo-driver/mongo"
)

// recentLogins is how many login records GET /logins returns.
const recentLogins = 20

// HandleLogout handles POST /logout. It always clears the cookie, signed
// in or not.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok {
		h.Audit.Logout(r.Context(), r, u.ID)
	}
	h.Sessions.ClearCookie(w)
	apiresp.Message(w, "Logged out")
}

// ServeMe handles GET /me.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	_, id, ok := authz.UserCtx(r)
	if !ok {
		apiresp.Fail(w, apperr.Unauthorized, "Not authorized, please sign in")
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			apiresp.Fail(w, apperr.Unauthorized, "Not authorized, please sign in")
			return
		}
		apiresp.Error(w, h.Log, "account.me", apperr.Wrap(err, ""))
		return
	}
	apiresp.OK(w, u)
}

// ServeLogins handles GET /logins: the caller's most recent sign-ins.
func (h *Handler) ServeLogins(w http.ResponseWriter, r *http.Request) {
	_, id, ok := authz.UserCtx(r)
	if !ok {
		apiresp.Fail(w, apperr.Unauthorized, "Not authorized, please sign in")
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()

	recs, err := h.Logins.Recent(ctx, id, recentLogins)
	if err != nil {
		apiresp.Error(w, h.Log, "account.logins", apperr.Wrap(err, ""))
		return
	}
	apiresp.OK(w, recs)
}

// ServeActivity handles GET /activity: sign-in and sign-up events recorded
// against the caller, newest first.
func (h *Handler) ServeActivity(w http.ResponseWriter, r *http.Request) {
	_, id, ok := authz.UserCtx(r)
	if !ok {
		apiresp.Fail(w, apperr.Unauthorized, "Not authorized, please sign in")
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()

	events, err := h.Events.List(ctx, audit.Filter{
		UserID:   &id,
		Category: audit.CategoryAuth,
		Limit:    int64(paging.ParseLimit(r)),
	})
	if err != nil {
		apiresp.Error(w, h.Log, "account.activity", apperr.Wrap(err, ""))
		return
	}
	apiresp.OK(w, events)
}
