// internal/app/features/trips/trips.go
package trips

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/planora/internal/app/system/apiresp"
	"github.com/dalemusser/planora/internal/app/system/apperr"
	"github.com/dalemusser/planora/internal/app/system/authz"
	"github.com/dalemusser/planora/internal/app/system/inputval"
	"github.com/dalemusser/planora/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ServeList handles GET /: the caller's trips, newest first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		apiresp.Fail(w, apperr.Unauthorized, "Not authorized, please sign in")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	out, err := h.Trips.ListByUser(ctx, uid)
	if err != nil {
		apiresp.Error(w, h.Log, "trips.list", apperr.Wrap(err, ""))
		return
	}
	apiresp.OK(w, out)
}

// HandleCreate handles POST /.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		apiresp.Fail(w, apperr.Unauthorized, "Not authorized, please sign in")
		return
	}
	var in tripInput
	if err := inputval.DecodeJSON(r, &in); err != nil {
		apiresp.Error(w, h.Log, "trips.create", err)
		return
	}
	t, err := in.trip()
	if err != nil {
		apiresp.Error(w, h.Log, "trips.create", err)
		return
	}
	t.UserID = uid

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Trips.Create(ctx, t)
	if err != nil {
		apiresp.Error(w, h.Log, "trips.create", apperr.Wrap(err, ""))
		return
	}
	apiresp.Created(w, "Trip created", created)
}

// ServeTrip handles GET /{id}.
func (h *Handler) ServeTrip(w http.ResponseWriter, r *http.Request) {
	uid, id, ok := h.begin(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	t, err := h.Trips.GetOwned(ctx, id, uid)
	if err != nil {
		h.fail(w, "trips.get", err)
		return
	}
	apiresp.OK(w, t)
}

// HandleUpdate handles PUT /{id}. The body replaces every editable field.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	uid, id, ok := h.begin(w, r)
	if !ok {
		return
	}
	var in tripInput
	if err := inputval.DecodeJSON(r, &in); err != nil {
		apiresp.Error(w, h.Log, "trips.update", err)
		return
	}
	t, err := in.trip()
	if err != nil {
		apiresp.Error(w, h.Log, "trips.update", err)
		return
	}
	t.ID, t.UserID = id, uid

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	up, err := h.Trips.Update(ctx, t)
	if err != nil {
		h.fail(w, "trips.update", err)
		return
	}
	apiresp.OKMessage(w, "Trip updated", up)
}

// HandleDelete handles DELETE /{id}. Bookings attached to the trip are
// kept and detached.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	uid, id, ok := h.begin(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	n, err := h.Trips.Delete(ctx, id, uid)
	if err != nil {
		apiresp.Error(w, h.Log, "trips.delete", apperr.Wrap(err, ""))
		return
	}
	if n == 0 {
		apiresp.Fail(w, apperr.NotFound, notFound)
		return
	}
	if _, err := h.Bookings.DetachTrip(ctx, id); err != nil {
		// The trip is gone; a dangling trip_id is harmless to readers.
		h.Log.Warn("detach bookings failed", zap.String("trip_id", id.Hex()), zap.Error(err))
	}
	apiresp.Message(w, "Trip deleted")
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, mongo.ErrNoDocuments) {
		apiresp.Fail(w, apperr.NotFound, notFound)
		return
	}
	apiresp.Error(w, h.Log, op, apperr.Wrap(err, ""))
}
