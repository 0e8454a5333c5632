// internal/app/features/posts/read.go
package posts

import (
	"context"
	"net/http"
	"strings"

	poststore "github.com/dalemusser/planora/internal/app/store/posts"
	"github.com/dalemusser/planora/internal/app/system/apiresp"
	"github.com/dalemusser/planora/internal/app/system/apperr"
	"github.com/dalemusser/planora/internal/app/system/paging"
	"github.com/dalemusser/planora/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServeList handles GET /?tag=&author=&before=&limit=. Newest first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	limit := paging.ParseLimit(r)
	q := poststore.ListQuery{
		Tag:   strings.ToLower(query.Get(r, "tag")),
		Limit: int64(limit) + 1,
	}
	if s := query.Get(r, "author"); s != "" {
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			apiresp.Fail(w, apperr.Validation, "author must be a valid id.")
			return
		}
		q.AuthorID = &id
	}
	if before, ok := paging.ParseBeforeID(r); ok {
		q.BeforeID = &before
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	rows, err := h.Posts.List(ctx, q)
	if err != nil {
		apiresp.Error(w, h.Log, "posts.list", apperr.Wrap(err, ""))
		return
	}
	more := paging.TrimPage(&rows, limit)
	page := postPage{Posts: rows, HasMore: more}
	if more {
		page.NextBefore = rows[len(rows)-1].ID.Hex()
	}
	apiresp.OK(w, page)
}

// ServePost handles GET /{id}.
func (h *Handler) ServePost(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Posts.GetByID(ctx, id)
	if err != nil {
		h.fail(w, "posts.get", err)
		return
	}
	apiresp.OK(w, p)
}
