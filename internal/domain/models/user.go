// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a planora account.
//
// NOTE:
//   - PasswordHash is empty for accounts created through Google sign-in.
//   - GoogleID links an account to its Google identity once the user has
//     signed in with Google at least once.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	NameCI       string             `bson:"name_ci" json:"-"` // lowercase, diacritics-stripped
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash,omitempty" json:"-"`
	GoogleID     string             `bson:"google_id,omitempty" json:"-"`
	Picture      string             `bson:"picture,omitempty" json:"picture,omitempty"`
	AuthMethod   string             `bson:"auth_method" json:"auth_method"` // password | google
	Status       string             `bson:"status" json:"status"`           // active | disabled

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// User statuses.
const (
	UserActive   = "active"
	UserDisabled = "disabled"
)

// Auth methods.
const (
	AuthPassword = "password"
	AuthGoogle   = "google"
)

// UserSummary is the public projection of a user embedded in API responses.
type UserSummary struct {
	ID      primitive.ObjectID `bson:"_id" json:"id"`
	Name    string             `bson:"name" json:"name"`
	Email   string             `bson:"email" json:"email"`
	Picture string             `bson:"picture,omitempty" json:"picture,omitempty"`
}

// Summary returns the public projection of u.
func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Picture: u.Picture}
}
