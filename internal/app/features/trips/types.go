package trips

import (
	"time"

	"github.com/dalemusser/planora/internal/app/system/apperr"
	"github.com/dalemusser/planora/internal/app/system/normalize"
	"github.com/dalemusser/planora/internal/domain/models"
)

type tripInput struct {
	Title       string     `json:"title" validate:"required,notblank,max=200" label:"Title"`
	Destination string     `json:"destination" validate:"required,notblank,max=200" label:"Destination"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Notes       string     `json:"notes" validate:"max=5000" label:"Notes"`
	Budget      float64    `json:"budget" validate:"gte=0" label:"Budget"`
	Travelers   int        `json:"travelers" validate:"gte=0,lte=100" label:"Travelers"`
}

// trip checks the cross-field rules and returns the model. Travelers
// defaults to 1.
func (in tripInput) trip() (models.Trip, error) {
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return models.Trip{}, apperr.E(apperr.Validation, "End date must not be before start date.")
	}
	t := models.Trip{
		Title:       normalize.Name(in.Title),
		Destination: normalize.Name(in.Destination),
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Notes:       in.Notes,
		Budget:      in.Budget,
		Travelers:   in.Travelers,
	}
	if t.Travelers == 0 {
		t.Travelers = 1
	}
	return t, nil
}
