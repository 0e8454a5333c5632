// internal/app/features/posts/handler.go
package posts

import (
	"errors"
	"net/http"

	poststore "github.com/dalemusser/planora/internal/app/store/posts"
	"github.com/dalemusser/planora/internal/app/system/apiresp"
	"github.com/dalemusser/planora/internal/app/system/apperr"
	"github.com/dalemusser/planora/internal/app/system/markdown"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const notFound = "Post not found"

// Handler serves /api/posts. Reading is public; writing requires a
// signed-in user and editing is limited to the author.
type Handler struct {
	Posts *poststore.Store
	MD    *markdown.Renderer
	Log   *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Posts: poststore.New(db),
		MD:    markdown.New(),
		Log:   logger,
	}
}

func postID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apiresp.Fail(w, apperr.NotFound, notFound)
		return primitive.NilObjectID, false
	}
	return id, true
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, mongo.ErrNoDocuments) {
		apiresp.Fail(w, apperr.NotFound, notFound)
		return
	}
	apiresp.Error(w, h.Log, op, apperr.Wrap(err, ""))
}
