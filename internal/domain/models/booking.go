// internal/domain/models/booking.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Booking statuses.
const (
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
)

// BookingTypes lists the accepted booking types.
var BookingTypes = []string{"hotel", "flight", "activity", "car", "other"}

// Booking is a reservation recorded by a user, optionally attached to one of
// their trips.
type Booking struct {
	ID         primitive.ObjectID  `bson:"_id" json:"id"`
	UserID     primitive.ObjectID  `bson:"user_id" json:"user_id"`
	TripID     *primitive.ObjectID `bson:"trip_id,omitempty" json:"trip_id,omitempty"`
	Type       string              `bson:"type" json:"type"`
	Provider   string              `bson:"provider" json:"provider"`
	Reference  string              `bson:"reference,omitempty" json:"reference,omitempty"`
	CheckIn    time.Time           `bson:"check_in" json:"check_in"`
	CheckOut   *time.Time          `bson:"check_out,omitempty" json:"check_out,omitempty"`
	Guests     int                 `bson:"guests" json:"guests"`
	TotalPrice float64             `bson:"total_price" json:"total_price"`
	Currency   string              `bson:"currency" json:"currency"`
	Status     string              `bson:"status" json:"status"` // confirmed | cancelled

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
