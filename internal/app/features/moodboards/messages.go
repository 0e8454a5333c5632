// internal/app/features/moodboards/messages.go
package moodboards

import (
	"net/http"

	"github.com/dalemusser/planora/internal/app/system/apiresp"
	"github.com/dalemusser/planora/internal/app/system/inputval"
	"github.com/dalemusser/planora/internal/app/system/paging"
)

// HandlePostMessage handles POST /{id}/messages.
func (h *Handler) HandlePostMessage(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.begin(w, r)
	if !ok {
		return
	}
	var in messageInput
	if err := inputval.DecodeJSON(r, &in); err != nil {
		apiresp.Error(w, h.Log, "moodboards.message", err)
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()

	m, err := h.Svc.PostMessage(ctx, actor, id, in.Text, in.Type)
	if err != nil {
		apiresp.Error(w, h.Log, "moodboards.message", err)
		return
	}
	apiresp.Created(w, "Message sent", m)
}

// ServeMessages handles GET /{id}/messages?after=<seq>&limit=<n>.
func (h *Handler) ServeMessages(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.begin(w, r)
	if !ok {
		return
	}
	after := paging.ParseAfterSeq(r)
	limit := paging.ParseLimit(r)

	ctx, cancel := h.ctx(r)
	defer cancel()

	msgs, more, err := h.Svc.ListMessages(ctx, actor, id, after, limit)
	if err != nil {
		apiresp.Error(w, h.Log, "moodboards.messages", err)
		return
	}
	next := after
	if n := len(msgs); n > 0 {
		next = msgs[n-1].Seq
	}
	apiresp.OK(w, messagePage{Messages: msgs, HasMore: more, NextAfter: next})
}
