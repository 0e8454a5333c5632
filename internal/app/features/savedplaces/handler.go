// internal/app/features/savedplaces/handler.go
package savedplaces

import (
	"context"
	"errors"
	"net/http"
	"strings"

	savedplacestore "github.com/dalemusser/planora/internal/app/store/savedplaces"
	"github.com/dalemusser/planora/internal/app/system/apiresp"
	"github.com/dalemusser/planora/internal/app/system/apperr"
	"github.com/dalemusser/planora/internal/app/system/authz"
	"github.com/dalemusser/planora/internal/app/system/inputval"
	"github.com/dalemusser/planora/internal/app/system/timeouts"
	"github.com/dalemusser/planora/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves /api/saved-places.
type Handler struct {
	Places *savedplacestore.Store
	Log    *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{Places: savedplacestore.New(db), Log: logger}
}

type placeInput struct {
	PlaceID  string  `json:"place_id" validate:"required,notblank,max=200" label:"Place id"`
	Name     string  `json:"name" validate:"required,notblank,max=200" label:"Name"`
	Address  string  `json:"address" validate:"max=500" label:"Address"`
	Lat      float64 `json:"lat" validate:"latitude" label:"Latitude"`
	Lng      float64 `json:"lng" validate:"longitude" label:"Longitude"`
	Category string  `json:"category" validate:"max=50" label:"Category"`
	Notes    string  `json:"notes" validate:"max=2000" label:"Notes"`
}

// ServeList handles GET /?category=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		apiresp.Fail(w, apperr.Unauthorized, "Not authorized, please sign in")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	out, err := h.Places.ListByUser(ctx, uid, strings.ToLower(query.Get(r, "category")))
	if err != nil {
		apiresp.Error(w, h.Log, "savedplaces.list", apperr.Wrap(err, ""))
		return
	}
	apiresp.OK(w, out)
}

// HandleCreate handles POST /. Saving the same place twice is a conflict.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		apiresp.Fail(w, apperr.Unauthorized, "Not authorized, please sign in")
		return
	}
	var in placeInput
	if err := inputval.DecodeJSON(r, &in); err != nil {
		apiresp.Error(w, h.Log, "savedplaces.create", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Places.Create(ctx, models.SavedPlace{
		UserID:   uid,
		PlaceID:  strings.TrimSpace(in.PlaceID),
		Name:     strings.TrimSpace(in.Name),
		Address:  in.Address,
		Lat:      in.Lat,
		Lng:      in.Lng,
		Category: strings.ToLower(strings.TrimSpace(in.Category)),
		Notes:    in.Notes,
	})
	if err != nil {
		if errors.Is(err, savedplacestore.ErrDuplicate) {
			apiresp.Fail(w, apperr.Conflict, "You have already saved this place.")
			return
		}
		apiresp.Error(w, h.Log, "savedplaces.create", apperr.Wrap(err, ""))
		return
	}
	apiresp.Created(w, "Place saved", p)
}

// HandleDelete handles DELETE /{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		apiresp.Fail(w, apperr.Unauthorized, "Not authorized, please sign in")
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apiresp.Fail(w, apperr.NotFound, "Saved place not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Places.Delete(ctx, id, uid)
	if err != nil {
		apiresp.Error(w, h.Log, "savedplaces.delete", apperr.Wrap(err, ""))
		return
	}
	if n == 0 {
		apiresp.Fail(w, apperr.NotFound, "Saved place not found")
		return
	}
	apiresp.Message(w, "Place removed")
}
