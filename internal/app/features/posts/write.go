// internal/app/features/posts/write.go
package posts

import (
	"context"
	"net/http"

	"github.com/dalemusser/planora/internal/app/system/apiresp"
	"github.com/dalemusser/planora/internal/app/system/apperr"
	"github.com/dalemusser/planora/internal/app/system/authz"
	"github.com/dalemusser/planora/internal/app/system/inputval"
	"github.com/dalemusser/planora/internal/app/system/normalize"
	"github.com/dalemusser/planora/internal/app/system/timeouts"
	"github.com/dalemusser/planora/internal/domain/models"
	"go.uber.org/zap"
)

var errNotAuthor = apperr.E(apperr.Forbidden, "Only the author can change this post")

// render validates in and fills the body fields of p.
func (h *Handler) render(in postInput, p *models.Post) error {
	html, err := h.MD.Render(in.Body)
	if err != nil {
		return apperr.Wrap(err, "")
	}
	p.Title = normalize.Name(in.Title)
	p.Body = in.Body
	p.BodyHTML = html
	p.Tags = normalize.Tags(in.Tags)
	return nil
}

// HandleCreate handles POST /.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := authz.ActorFrom(r)
	if !ok {
		apiresp.Fail(w, apperr.Unauthorized, "Not authorized, please sign in")
		return
	}
	var in postInput
	if err := inputval.DecodeJSON(r, &in); err != nil {
		apiresp.Error(w, h.Log, "posts.create", err)
		return
	}
	p := models.Post{AuthorID: actor.ID, AuthorName: actor.Name}
	if err := h.render(in, &p); err != nil {
		apiresp.Error(w, h.Log, "posts.create", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Posts.Create(ctx, p)
	if err != nil {
		apiresp.Error(w, h.Log, "posts.create", apperr.Wrap(err, ""))
		return
	}
	apiresp.Created(w, "Post created", created)
}

// loadOwn fetches the post and checks actor is its author.
func (h *Handler) loadOwn(ctx context.Context, w http.ResponseWriter, r *http.Request, op string) (models.Post, bool) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		apiresp.Fail(w, apperr.Unauthorized, "Not authorized, please sign in")
		return models.Post{}, false
	}
	id, ok := postID(w, r)
	if !ok {
		return models.Post{}, false
	}
	p, err := h.Posts.GetByID(ctx, id)
	if err != nil {
		h.fail(w, op, err)
		return models.Post{}, false
	}
	if p.AuthorID != uid {
		h.Log.Debug("post edit denied", zap.String("post_id", id.Hex()), zap.String("user_id", uid.Hex()))
		apiresp.Error(w, h.Log, op, errNotAuthor)
		return models.Post{}, false
	}
	return p, true
}

// HandleUpdate handles PUT /{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var in postInput
	if err := inputval.DecodeJSON(r, &in); err != nil {
		apiresp.Error(w, h.Log, "posts.update", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, ok := h.loadOwn(ctx, w, r, "posts.update")
	if !ok {
		return
	}
	if err := h.render(in, &p); err != nil {
		apiresp.Error(w, h.Log, "posts.update", err)
		return
	}
	up, err := h.Posts.Update(ctx, p)
	if err != nil {
		h.fail(w, "posts.update", err)
		return
	}
	apiresp.OKMessage(w, "Post updated", up)
}

// HandleDelete handles DELETE /{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, ok := h.loadOwn(ctx, w, r, "posts.delete")
	if !ok {
		return
	}
	if _, err := h.Posts.Delete(ctx, p.ID); err != nil {
		apiresp.Error(w, h.Log, "posts.delete", apperr.Wrap(err, ""))
		return
	}
	apiresp.Message(w, "Post deleted")
}

// HandleLike handles POST /{id}/like, toggling the caller's like.
func (h *Handler) HandleLike(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		apiresp.Fail(w, apperr.Unauthorized, "Not authorized, please sign in")
		return
	}
	id, ok := postID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	liked, count, err := h.Posts.ToggleLike(ctx, id, uid)
	if err != nil {
		h.fail(w, "posts.like", err)
		return
	}
	apiresp.OK(w, likeResult{Liked: liked, LikeCount: count})
}

