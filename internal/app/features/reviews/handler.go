// internal/app/features/reviews/handler.go
package reviews

import (
	"context"
	"errors"
	"net/http"
	"strings"

	reviewstore "github.com/dalemusser/planora/internal/app/store/reviews"
	"github.com/dalemusser/planora/internal/app/system/apiresp"
	"github.com/dalemusser/planora/internal/app/system/apperr"
	"github.com/dalemusser/planora/internal/app/system/authz"
	"github.com/dalemusser/planora/internal/app/system/inputval"
	"github.com/dalemusser/planora/internal/app/system/normalize"
	"github.com/dalemusser/planora/internal/app/system/timeouts"
	"github.com/dalemusser/planora/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	notFound  = "Review not found"
	listLimit = 100
)

// Handler serves /api/reviews.
type Handler struct {
	Reviews *reviewstore.Store
	Log     *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{Reviews: reviewstore.New(db), Log: logger}
}

type reviewInput struct {
	TargetType string `json:"target_type" validate:"required,oneof=hotel place trip" label:"Target type"`
	TargetID   string `json:"target_id" validate:"required,notblank,max=200" label:"Target id"`
	Rating     int    `json:"rating" validate:"required,min=1,max=5" label:"Rating"`
	Comment    string `json:"comment" validate:"max=2000" label:"Comment"`
}

type targetReviews struct {
	Reviews []models.Review `json:"reviews"`
	reviewstore.Summary
}

// ServeList handles GET /?target_type=&target_id=. Both parameters are required.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	tt := strings.ToLower(query.Get(r, "target_type"))
	tid := query.Get(r, "target_id")
	if !validTarget(tt) || tid == "" {
		apiresp.Fail(w, apperr.Validation, "target_type and target_id are required.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	rows, err := h.Reviews.ListByTarget(ctx, tt, tid, listLimit)
	if err != nil {
		apiresp.Error(w, h.Log, "reviews.list", apperr.Wrap(err, ""))
		return
	}
	sum, err := h.Reviews.Summarize(ctx, tt, tid)
	if err != nil {
		apiresp.Error(w, h.Log, "reviews.summary", apperr.Wrap(err, ""))
		return
	}
	apiresp.OK(w, targetReviews{Reviews: rows, Summary: sum})
}

func validTarget(s string) bool {
	for _, t := range models.ReviewTargetTypes {
		if s == t {
			return true
		}
	}
	return false
}

// HandleCreate handles POST /.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := authz.ActorFrom(r)
	if !ok {
		apiresp.Fail(w, apperr.Unauthorized, "Not authorized, please sign in")
		return
	}
	var in reviewInput
	if err := inputval.DecodeJSON(r, &in); err != nil {
		apiresp.Error(w, h.Log, "reviews.create", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	rv, err := h.Reviews.Create(ctx, models.Review{
		AuthorID:   actor.ID,
		AuthorName: actor.Name,
		TargetType: in.TargetType,
		TargetID:   strings.TrimSpace(in.TargetID),
		Rating:     in.Rating,
		Comment:    normalize.Name(in.Comment),
	})
	if errors.Is(err, reviewstore.ErrDuplicate) {
		apiresp.Fail(w, apperr.Conflict, "You have already reviewed this.")
		return
	}
	if err != nil {
		apiresp.Error(w, h.Log, "reviews.create", apperr.Wrap(err, ""))
		return
	}
	apiresp.Created(w, "Review added", rv)
}

// HandleDelete handles DELETE /{id}. Only the author may delete.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		apiresp.Fail(w, apperr.Unauthorized, "Not authorized, please sign in")
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apiresp.Fail(w, apperr.NotFound, notFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	rv, err := h.Reviews.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		apiresp.Fail(w, apperr.NotFound, notFound)
		return
	}
	if err != nil {
		apiresp.Error(w, h.Log, "reviews.delete", apperr.Wrap(err, ""))
		return
	}
	if rv.AuthorID != uid {
		apiresp.Fail(w, apperr.Forbidden, "Only the author can delete this review")
		return
	}
	if _, err := h.Reviews.Delete(ctx, id); err != nil {
		apiresp.Error(w, h.Log, "reviews.delete", apperr.Wrap(err, ""))
		return
	}
	apiresp.Message(w, "Review deleted")
}
