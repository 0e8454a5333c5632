package bookings

import (
	"time"

	"github.com/dalemusser/planora/internal/app/system/apperr"
	"github.com/dalemusser/planora/internal/app/system/normalize"
	"github.com/dalemusser/planora/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type bookingInput struct {
	Type       string     `json:"type" validate:"required,oneof=hotel flight activity car other" label:"Type"`
	Provider   string     `json:"provider" validate:"required,notblank,max=200" label:"Provider"`
	Reference  string     `json:"reference" validate:"max=100" label:"Reference"`
	TripID     string     `json:"trip_id" validate:"omitempty,objectid" label:"Trip"`
	CheckIn    time.Time  `json:"check_in" validate:"required" label:"Check-in"`
	CheckOut   *time.Time `json:"check_out"`
	Guests     int        `json:"guests" validate:"gte=0,lte=50" label:"Guests"`
	TotalPrice float64    `json:"total_price" validate:"gte=0" label:"Total price"`
	Currency   string     `json:"currency" validate:"omitempty,len=3,alpha" label:"Currency"`
}

// booking applies the cross-field rules. Currency defaults to USD and
// guests to 1.
func (in bookingInput) booking() (models.Booking, error) {
	if in.CheckOut != nil && in.CheckOut.Before(in.CheckIn) {
		return models.Booking{}, apperr.E(apperr.Validation, "Check-out must not be before check-in.")
	}
	b := models.Booking{
		Type:       in.Type,
		Provider:   normalize.Name(in.Provider),
		Reference:  in.Reference,
		CheckIn:    in.CheckIn.UTC(),
		CheckOut:   in.CheckOut,
		Guests:     in.Guests,
		TotalPrice: in.TotalPrice,
		Currency:   normalize.Currency(in.Currency),
	}
	if in.TripID != "" {
		id, err := primitive.ObjectIDFromHex(in.TripID)
		if err != nil {
			return models.Booking{}, apperr.E(apperr.Validation, "Trip must be a valid id.")
		}
		b.TripID = &id
	}
	if b.Currency == "" {
		b.Currency = "USD"
	}
	if b.Guests == 0 {
		b.Guests = 1
	}
	return b, nil
}
