// internal/app/features/trips/handler.go
package trips

import (
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

const notFound = "Trip not found"

// Handler serves /api/trips. Every route is scoped to the caller's own
// trips; someone else's trip is reported as not found.
type Handler struct {
	Trips    *tripstore.Store
	Bookings *bookingstore.Store
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Trips:    tripstore.New(db),
		Bookings: bookingstore.New(db),
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
