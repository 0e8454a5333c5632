// internal/app/features/moodboards/collaborators.go
package moodboards

import (
	"net/http"

	"github.com/dalemusser/planora/internal/app/system/apiresp"
	"github.com/dalemusser/planora/internal/app/system/apperr"
	"github.com/dalemusser/planora/internal/app/system/inputval"
	"github.com/dalemusser/planora/internal/app/system/normalize"
	"github.com/dalemusser/planora/internal/app/system/paging"
	"github.com/dalemusser/planora/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleInvite handles POST /{id}/collaborators.
func (h *Handler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.begin(w, r)
	if !ok {
		return
	}
	var in inviteInput
	if err := inputval.DecodeJSON(r, &in); err != nil {
		apiresp.Error(w, h.Log, "moodboards.invite", err)
		return
	}

	ctx, cancel := h.longCtx(r, "moodboards.invite")
	defer cancel()

	v, added, err := h.Svc.Invite(ctx, actor, id, in.Email, in.Role)
	if err != nil {
		apiresp.Error(w, h.Log, "moodboards.invite", err)
		return
	}
	h.Log.Info("collaborator invited",
		zap.String("board_id", id.Hex()),
		zap.String("invitee_id", added.UserID.Hex()),
		zap.String("role", added.Role))
	h.Audit.CollaboratorInvited(ctx, r, actor.ID, id, added.UserID, added.Role)
	apiresp.Created(w, "Collaborator invited", v)
}

// HandleRespond handles PUT /{id}/collaborators/status. The caller answers
// their own invitation.
func (h *Handler) HandleRespond(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.begin(w, r)
	if !ok {
		return
	}
	var in respondInput
	if err := inputval.DecodeJSON(r, &in); err != nil {
		apiresp.Error(w, h.Log, "moodboards.respond", err)
		return
	}

	ctx, cancel := h.longCtx(r, "moodboards.respond")
	defer cancel()

	v, err := h.Svc.Respond(ctx, actor, id, in.Status)
	if err != nil {
		apiresp.Error(w, h.Log, "moodboards.respond", err)
		return
	}
	status := normalize.Status(in.Status)
	msg := "Invitation accepted"
	if status == models.StatusDeclined {
		msg = "Invitation declined"
	}
	h.Audit.InvitationResponded(ctx, r, actor.ID, id, status)
	apiresp.OKMessage(w, msg, v)
}

// HandleRemove handles DELETE /{id}/collaborators/{collaboratorId}.
// collaboratorId is the collaborator's user id.
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.begin(w, r)
	if !ok {
		return
	}
	target, err := primitive.ObjectIDFromHex(chi.URLParam(r, "collaboratorId"))
	if err != nil {
		apiresp.Fail(w, apperr.Validation, "Invalid collaborator id.")
		return
	}

	ctx, cancel := h.longCtx(r, "moodboards.remove")
	defer cancel()

	v, err := h.Svc.Remove(ctx, actor, id, target)
	if err != nil {
		apiresp.Error(w, h.Log, "moodboards.remove", err)
		return
	}
	h.Audit.CollaboratorRemoved(ctx, r, actor.ID, id, target)
	apiresp.OKMessage(w, "Collaborator removed", v)
}

// ServeActivity handles GET /{id}/activity?limit=<n>.
func (h *Handler) ServeActivity(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.begin(w, r)
	if !ok {
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()

	events, err := h.Svc.Activity(ctx, actor, id, paging.ParseLimit(r))
	if err != nil {
		apiresp.Error(w, h.Log, "moodboards.activity", err)
		return
	}
	apiresp.OK(w, events)
}
