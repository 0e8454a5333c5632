// internal/domain/models/post.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post is a forum post. Body is the author's markdown; BodyHTML is the
// sanitized rendering served to clients.
type Post struct {
	ID         primitive.ObjectID   `bson:"_id" json:"id"`
	AuthorID   primitive.ObjectID   `bson:"author_id" json:"author_id"`
	AuthorName string               `bson:"author_name" json:"author_name"`
	Title      string               `bson:"title" json:"title"`
	Body       string               `bson:"body" json:"body"`
	BodyHTML   string               `bson:"body_html" json:"body_html"`
	Tags       []string             `bson:"tags" json:"tags"`
	Likes      []primitive.ObjectID `bson:"likes" json:"-"`
	LikeCount  int                  `bson:"like_count" json:"like_count"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
