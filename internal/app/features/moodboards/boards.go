// internal/app/features/moodboards/boards.go
package moodboards

import (
	"net/http"

	"github.com/dalemusser/planora/internal/app/system/apiresp"
	"github.com/dalemusser/planora/internal/app/system/apperr"
	"github.com/dalemusser/planora/internal/app/system/authz"
	"github.com/dalemusser/planora/internal/app/system/inputval"
	"go.uber.org/zap"
)

// ServePublic handles GET /public.
func (h *Handler) ServePublic(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	boards, err := h.Svc.ListPublic(ctx)
	if err != nil {
		apiresp.Error(w, h.Log, "moodboards.public", err)
		return
	}
	apiresp.OK(w, boards)
}

// HandleCreate handles POST /.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := authz.ActorFrom(r)
	if !ok {
		apiresp.Fail(w, apperr.Unauthorized, "Not authorized, please sign in")
		return
	}
	var in createInput
	if err := inputval.DecodeJSON(r, &in); err != nil {
		apiresp.Error(w, h.Log, "moodboards.create", err)
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()

	v, err := h.Svc.Create(ctx, actor, in.board())
	if err != nil {
		apiresp.Error(w, h.Log, "moodboards.create", err)
		return
	}
	apiresp.Created(w, "Mood board created", v)
}

// ServeMine handles GET /user.
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := authz.ActorFrom(r)
	if !ok {
		apiresp.Fail(w, apperr.Unauthorized, "Not authorized, please sign in")
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()

	boards, err := h.Svc.ListForUser(ctx, actor)
	if err != nil {
		apiresp.Error(w, h.Log, "moodboards.user", err)
		return
	}
	apiresp.OK(w, boards)
}

// ServeBoard handles GET /{id}.
func (h *Handler) ServeBoard(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.begin(w, r)
	if !ok {
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()

	v, err := h.Svc.Get(ctx, actor, id)
	if err != nil {
		if apperr.Is(err, apperr.Forbidden) {
			h.Log.Debug("board view denied", zap.String("board_id", id.Hex()), zap.String("user_id", actor.ID.Hex()))
		}
		apiresp.Error(w, h.Log, "moodboards.get", err)
		return
	}
	apiresp.OK(w, v)
}

// HandleUpdate handles PUT /{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.begin(w, r)
	if !ok {
		return
	}
	var in updateInput
	if err := inputval.DecodeJSON(r, &in); err != nil {
		apiresp.Error(w, h.Log, "moodboards.update", err)
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()

	v, err := h.Svc.Update(ctx, actor, id, in.Version, in.content())
	if err != nil {
		apiresp.Error(w, h.Log, "moodboards.update", err)
		return
	}
	apiresp.OKMessage(w, "Mood board updated", v)
}

// HandleDelete handles DELETE /{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.begin(w, r)
	if !ok {
		return
	}
	ctx, cancel := h.longCtx(r, "moodboards.delete")
	defer cancel()

	b, err := h.Svc.Delete(ctx, actor, id)
	if err != nil {
		apiresp.Error(w, h.Log, "moodboards.delete", err)
		return
	}
	h.Audit.BoardDeleted(ctx, r, actor.ID, b.ID, b.Title)
	apiresp.Message(w, "Mood board deleted")
}
