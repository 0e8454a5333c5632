// internal/app/features/moodboards/types.go
package moodboards

import (
	moodboardstore "github.com/dalemusser/planora/internal/app/store/moodboards"
	"github.com/dalemusser/planora/internal/domain/models"
)

type createInput struct {
	Title          string                `json:"title" validate:"required,max=200" label:"Title"`
	Description    string                `json:"description" validate:"max=5000" label:"Description"`
	ColorPalette   []string              `json:"color_palette" validate:"max=32" label:"Color palette"`
	Themes         []string              `json:"themes" validate:"max=50" label:"Themes"`
	Activities     []string              `json:"activities" validate:"max=50" label:"Activities"`
	Accommodations []string              `json:"accommodations" validate:"max=50" label:"Accommodations"`
	Dining         []string              `json:"dining" validate:"max=50" label:"Dining"`
	Vibe           string                `json:"vibe" validate:"max=200" label:"Vibe"`
	Elements       []models.BoardElement `json:"elements" validate:"max=500" label:"Elements"`
	Settings       map[string]any        `json:"settings"`
	Metadata       map[string]any        `json:"metadata"`
	IsPublic       bool                  `json:"is_public"`
}

func (in createInput) board() models.MoodBoard {
	return models.MoodBoard{
		Title:          in.Title,
		Description:    in.Description,
		ColorPalette:   in.ColorPalette,
		Themes:         in.Themes,
		Activities:     in.Activities,
		Accommodations: in.Accommodations,
		Dining:         in.Dining,
		Vibe:           in.Vibe,
		Elements:       in.Elements,
		Settings:       in.Settings,
		Metadata:       in.Metadata,
		IsPublic:       in.IsPublic,
	}
}

// updateInput is a partial update; absent fields are left alone. Version,
// when sent, must match the stored board.
type updateInput struct {
	Version        *int64                 `json:"version"`
	Title          *string                `json:"title" validate:"omitempty,min=1,max=200" label:"Title"`
	Description    *string                `json:"description" validate:"omitempty,max=5000" label:"Description"`
	ColorPalette   *[]string              `json:"color_palette" validate:"omitempty,max=32" label:"Color palette"`
	Themes         *[]string              `json:"themes" validate:"omitempty,max=50" label:"Themes"`
	Activities     *[]string              `json:"activities" validate:"omitempty,max=50" label:"Activities"`
	Accommodations *[]string              `json:"accommodations" validate:"omitempty,max=50" label:"Accommodations"`
	Dining         *[]string              `json:"dining" validate:"omitempty,max=50" label:"Dining"`
	Vibe           *string                `json:"vibe" validate:"omitempty,max=200" label:"Vibe"`
	Elements       *[]models.BoardElement `json:"elements" validate:"omitempty,max=500" label:"Elements"`
	Settings       *map[string]any        `json:"settings"`
	Metadata       *map[string]any        `json:"metadata"`
	IsPublic       *bool                  `json:"is_public"`
}

func (in updateInput) content() moodboardstore.Content {
	return moodboardstore.Content{
		Title:          in.Title,
		Description:    in.Description,
		ColorPalette:   in.ColorPalette,
		Themes:         in.Themes,
		Activities:     in.Activities,
		Accommodations: in.Accommodations,
		Dining:         in.Dining,
		Vibe:           in.Vibe,
		Elements:       in.Elements,
		Settings:       in.Settings,
		Metadata:       in.Metadata,
		IsPublic:       in.IsPublic,
	}
}

type inviteInput struct {
	Email string `json:"email" validate:"required,email" label:"Email"`
	Role  string `json:"role"`
}

type respondInput struct {
	Status string `json:"status" validate:"required" label:"Status"`
}

type messageInput struct {
	Text string `json:"text" validate:"required" label:"Message text"`
	Type string `json:"type"`
}

type messagePage struct {
	Messages []models.BoardMessage `json:"messages"`
	HasMore  bool                  `json:"has_more"`
	// NextAfter is the "after" value for the following page.
	NextAfter int64 `json:"next_after"`
}
