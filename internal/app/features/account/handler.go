// internal/app/features/account/handler.go
package account

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/planora/internal/app/store/audit"
	loginstore "github.com/dalemusser/planora/internal/app/store/logins"
	userstore "github.com/dalemusser/planora/internal/app/store/users"
	"github.com/dalemusser/planora/internal/app/system/auditlog"
	"github.com/dalemusser/planora/internal/app/system/auth"
	"github.com/dalemusser/planora/internal/app/system/ratelimit"
	"github.com/dalemusser/planora/internal/app/system/timeouts"
	"github.com/dalemusser/planora/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves /api/auth: password registration and sign-in, sign-out,
// and the current user.
type Handler struct {
	Users    *userstore.Store
	Logins   *loginstore.Store
	Events   *audit.Store
	Sessions *auth.SessionManager
	Limiter  *ratelimit.LoginLimiter // nil disables login rate limiting
	Audit    *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(
	db *mongo.Database,
	sessions *auth.SessionManager,
	limiter *ratelimit.LoginLimiter,
	auditLog *auditlog.Logger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Users:    userstore.New(db),
		Logins:   loginstore.New(db),
		Events:   audit.New(db),
		Sessions: sessions,
		Limiter:  limiter,
		Audit:    auditLog,
		Log:      logger,
	}
}

// authResult is the data returned after a successful register or login.
// Token duplicates the cookie for clients that prefer a Bearer header.
type authResult struct {
	User      models.UserSummary `json:"user"`
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expires_at"`
}

// startSession issues a token for u, sets the cookie and records the login.
func (h *Handler) startSession(ctx context.Context, w http.ResponseWriter, r *http.Request, u models.User, provider string) (authResult, error) {
	token, exp, err := h.Sessions.Issue(u.ID.Hex())
	if err != nil {
		return authResult{}, err
	}
	h.Sessions.SetCookie(w, token, exp)

	if err := h.Logins.Record(ctx, r, u.ID, provider); err != nil {
		// history is best-effort
		h.Log.Warn("record login failed", zap.String("user_id", u.ID.Hex()), zap.Error(err))
	}
	return authResult{User: u.Summary(), Token: token, ExpiresAt: exp}, nil
}

func (h *Handler) ctx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), timeouts.Short())
}
