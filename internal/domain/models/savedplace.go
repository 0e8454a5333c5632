// internal/domain/models/savedplace.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SavedPlace is a place a user bookmarked. One document per (user_id, place_id).
type SavedPlace struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	UserID   primitive.ObjectID `bson:"user_id" json:"user_id"`
	PlaceID  string             `bson:"place_id" json:"place_id"`
	Name     string             `bson:"name" json:"name"`
	Address  string             `bson:"address,omitempty" json:"address,omitempty"`
	Lat      float64            `bson:"lat" json:"lat"`
	Lng      float64            `bson:"lng" json:"lng"`
	Category string             `bson:"category,omitempty" json:"category,omitempty"`
	Notes    string             `bson:"notes,omitempty" json:"notes,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
