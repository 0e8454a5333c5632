// internal/app/features/account/login.go
package account

import (
	"errors"
	"net/http"

	"github.com/dalemusser/planora/internal/app/system/apiresp"
	"github.com/dalemusser/planora/internal/app/system/apperr"
	"github.com/dalemusser/planora/internal/app/system/authutil"
	"github.com/dalemusser/planora/internal/app/system/inputval"
	"github.com/dalemusser/planora/internal/app/system/metrics"
	"github.com/dalemusser/planora/internal/app/system/normalize"
	"github.com/dalemusser/planora/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
)

// Same message for unknown email and wrong password.
const badCredentials = "Invalid email or password."

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := inputval.DecodeJSON(r, &in); err != nil {
		apiresp.Error(w, h.Log, "account.login", err)
		return
	}
	email := normalize.Email(in.Email)

	ctx, cancel := h.ctx(r)
	defer cancel()

	if h.Limiter != nil {
		if ok, reason := h.Limiter.Check(r, email); !ok {
			h.Audit.LoginFailedRateLimit(ctx, r, email, reason)
			metrics.AuthAttempt(models.AuthPassword, "rate_limited")
			apiresp.JSON(w, http.StatusTooManyRequests, apiresp.Envelope{
				Success: false,
				Message: reason,
				Error:   "rate_limited",
			})
			return
		}
	}

	u, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			h.Audit.LoginFailedUserNotFound(ctx, r, email)
			metrics.AuthAttempt(models.AuthPassword, "bad_credentials")
			apiresp.Fail(w, apperr.Unauthorized, badCredentials)
			return
		}
		apiresp.Error(w, h.Log, "account.login", apperr.Wrap(err, ""))
		return
	}

	if u.Status == models.UserDisabled {
		h.Audit.LoginFailedUserDisabled(ctx, r, u.ID, email)
		metrics.AuthAttempt(models.AuthPassword, "disabled")
		apiresp.Fail(w, apperr.Forbidden, "This account has been disabled.")
		return
	}

	// Google-only accounts have no hash and never match.
	if !authutil.CheckPassword(in.Password, u.PasswordHash) {
		h.Audit.LoginFailedWrongPassword(ctx, r, u.ID, email)
		metrics.AuthAttempt(models.AuthPassword, "bad_credentials")
		apiresp.Fail(w, apperr.Unauthorized, badCredentials)
		return
	}

	if h.Limiter != nil {
		h.Limiter.ResetEmail(email)
	}

	res, err := h.startSession(ctx, w, r, *u, models.AuthPassword)
	if err != nil {
		apiresp.Error(w, h.Log, "account.login", apperr.Wrap(err, ""))
		return
	}
	h.Audit.LoginSuccess(ctx, r, u.ID, models.AuthPassword, email)
	metrics.AuthAttempt(models.AuthPassword, "ok")
	apiresp.OKMessage(w, "Logged in", res)
}
