// internal/app/features/bookings/bookings.go
package bookings

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/planora/internal/app/system/apiresp"
	"github.com/dalemusser/planora/internal/app/system/apperr"
	"github.com/dalemusser/planora/internal/app/system/authz"
	"github.com/dalemusser/planora/internal/app/system/inputval"
	"github.com/dalemusser/planora/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ServeList handles GET /?trip_id=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		apiresp.Fail(w, apperr.Unauthorized, "Not authorized, please sign in")
		return
	}
	var tripID *primitive.ObjectID
	if s := query.Get(r, "trip_id"); s != "" {
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			apiresp.Fail(w, apperr.Validation, "trip_id must be a valid id.")
			return
		}
		tripID = &id
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	out, err := h.Bookings.ListByUser(ctx, uid, tripID)
	if err != nil {
		apiresp.Error(w, h.Log, "bookings.list", apperr.Wrap(err, ""))
		return
	}
	apiresp.OK(w, out)
}

// HandleCreate handles POST /. A trip_id must name one of the caller's
// own trips.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		apiresp.Fail(w, apperr.Unauthorized, "Not authorized, please sign in")
		return
	}
	var in bookingInput
	if err := inputval.DecodeJSON(r, &in); err != nil {
		apiresp.Error(w, h.Log, "bookings.create", err)
		return
	}
	b, err := in.booking()
	if err != nil {
		apiresp.Error(w, h.Log, "bookings.create", err)
		return
	}
	b.UserID = uid

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if b.TripID != nil {
		if _, err := h.Trips.GetOwned(ctx, *b.TripID, uid); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				h.Log.Debug("booking references foreign trip", zap.String("trip_id", b.TripID.Hex()))
				apiresp.Fail(w, apperr.Validation, "Trip not found.")
				return
			}
			apiresp.Error(w, h.Log, "bookings.create", apperr.Wrap(err, ""))
			return
		}
	}

	created, err := h.Bookings.Create(ctx, b)
	if err != nil {
		apiresp.Error(w, h.Log, "bookings.create", apperr.Wrap(err, ""))
		return
	}
	apiresp.Created(w, "Booking created", created)
}

// ServeBooking handles GET /{id}.
func (h *Handler) ServeBooking(w http.ResponseWriter, r *http.Request) {
	uid, id, ok := h.begin(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	b, err := h.Bookings.GetOwned(ctx, id, uid)
	if err != nil {
		h.fail(w, "bookings.get", err)
		return
	}
	apiresp.OK(w, b)
}

// HandleCancel handles PUT /{id}/cancel.
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	uid, id, ok := h.begin(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	b, err := h.Bookings.Cancel(ctx, id, uid)
	if err != nil {
		h.fail(w, "bookings.cancel", err)
		return
	}
	apiresp.OKMessage(w, "Booking cancelled", b)
}

// HandleDelete handles DELETE /{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	uid, id, ok := h.begin(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Bookings.Delete(ctx, id, uid)
	if err != nil {
		h.fail(w, "bookings.delete", err)
		return
	}
	if n == 0 {
		apiresp.Fail(w, apperr.NotFound, notFound)
		return
	}
	apiresp.Message(w, "Booking deleted")
}
