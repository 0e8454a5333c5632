// internal/app/features/moodboards/handler.go
package moodboards

import (
	"context"
	"net/http"

	"github.com/dalemusser/planora/internal/app/system/apiresp"
	"github.com/dalemusser/planora/internal/app/system/apperr"
	"github.com/dalemusser/planora/internal/app/system/auditlog"
	"github.com/dalemusser/planora/internal/app/system/authz"
	"github.com/dalemusser/planora/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the /api/moodboards endpoints.
type Handler struct {
	Svc   *Service
	Log   *zap.Logger
	Audit *auditlog.Logger
}

// NewHandler constructs a mood boards Handler. It is typically called
// from the bootstrap BuildHandler function.
func NewHandler(client *mongo.Client, db *mongo.Database, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Svc:   NewService(client, db, logger),
		Log:   logger,
		Audit: audit,
	}
}

// begin resolves the caller and the {id} board param, writing the error
// response itself when either is missing.
func (h *Handler) begin(w http.ResponseWriter, r *http.Request) (authz.Actor, primitive.ObjectID, bool) {
	actor, ok := authz.ActorFrom(r)
	if !ok {
		apiresp.Fail(w, apperr.Unauthorized, "Not authorized, please sign in")
		return authz.Actor{}, primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apiresp.Fail(w, apperr.NotFound, "Mood board not found")
		return authz.Actor{}, primitive.NilObjectID, false
	}
	return actor, id, true
}

func (h *Handler) ctx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), timeouts.Medium())
}

// longCtx is for writes spanning several collections; op names the
// operation in the timeout warning.
func (h *Handler) longCtx(r *http.Request, op string) (context.Context, context.CancelFunc) {
	return timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, op)
}
