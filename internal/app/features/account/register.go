// internal/app/features/account/register.go
package account

import (
	"errors"
	"net/http"

	userstore "github.com/dalemusser/planora/internal/app/store/users"
	"github.com/dalemusser/planora/internal/app/system/apiresp"
	"github.com/dalemusser/planora/internal/app/system/apperr"
	"github.com/dalemusser/planora/internal/app/system/authutil"
	"github.com/dalemusser/planora/internal/app/system/inputval"
	"github.com/dalemusser/planora/internal/app/system/metrics"
	"github.com/dalemusser/planora/internal/domain/models"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| POST /register                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in registerInput
	if err := inputval.DecodeJSON(r, &in); err != nil {
		apiresp.Error(w, h.Log, "account.register", err)
		return
	}
	if err := authutil.ValidatePassword(in.Password); err != nil {
		apiresp.Fail(w, apperr.Validation, "Password: "+err.Error()+".")
		return
	}

	hash, err := authutil.HashPassword(in.Password)
	if err != nil {
		apiresp.Error(w, h.Log, "account.register", apperr.Wrap(err, ""))
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()

	u, err := h.Users.Create(ctx, models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		AuthMethod:   models.AuthPassword,
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			metrics.AuthAttempt(models.AuthPassword, "duplicate")
			apiresp.Fail(w, apperr.Conflict, "An account with this email already exists.")
			return
		}
		apiresp.Error(w, h.Log, "account.register", apperr.Wrap(err, ""))
		return
	}

	res, err := h.startSession(ctx, w, r, u, models.AuthPassword)
	if err != nil {
		apiresp.Error(w, h.Log, "account.register", apperr.Wrap(err, ""))
		return
	}
	h.Log.Info("user registered", zap.String("user_id", u.ID.Hex()))
	h.Audit.Registered(ctx, r, u.ID, models.AuthPassword, u.Email)
	metrics.AuthAttempt(models.AuthPassword, "registered")
	apiresp.Created(w, "Account created", res)
}
