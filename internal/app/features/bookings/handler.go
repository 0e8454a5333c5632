// internal/app/features/bookings/handler.go
package bookings

import (
	"errors"
	"net/http"

	bookingstore "github.com/dalemusser/planora/internal/app/store/bookings"
	tripstore "github.com/dalemusser/planora/internal/app/store/trips"
	"github.com/dalemusser/planora/internal/app/system/apiresp"
	"github.com/dalemusser/planora/internal/app/system/apperr"
	"github.com/dalemusser/planora/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const notFound = "Booking not found"

// Handler serves /api/bookings.
type Handler struct {
	Bookings *bookingstore.Store
	Trips    *tripstore.Store
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Bookings: bookingstore.New(db),
		Trips:    tripstore.New(db),
		Log:      logger,
	}
}

func (h *Handler) begin(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, primitive.ObjectID, bool) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		apiresp.Fail(w, apperr.Unauthorized, "Not authorized, please sign in")
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apiresp.Fail(w, apperr.NotFound, notFound)
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	return uid, id, true
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		apiresp.Fail(w, apperr.NotFound, notFound)
	case errors.Is(err, bookingstore.ErrAlreadyCancelled):
		apiresp.Fail(w, apperr.Conflict, "Booking is already cancelled.")
	default:
		apiresp.Error(w, h.Log, op, apperr.Wrap(err, ""))
	}
}
