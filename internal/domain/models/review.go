// internal/domain/models/review.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReviewTargetTypes lists what can be reviewed.
var ReviewTargetTypes = []string{"hotel", "place", "trip"}

// Review is a rating left by a user. One review per (author_id, target_type, target_id).
type Review struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	AuthorID   primitive.ObjectID `bson:"author_id" json:"author_id"`
	AuthorName string             `bson:"author_name" json:"author_name"`
	TargetType string             `bson:"target_type" json:"target_type"`
	TargetID   string             `bson:"target_id" json:"target_id"`
	Rating     int                `bson:"rating" json:"rating"`
	Comment    string             `bson:"comment,omitempty" json:"comment,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
