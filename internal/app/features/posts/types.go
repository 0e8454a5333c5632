package posts

import "github.com/dalemusser/planora/internal/domain/models"

type postInput struct {
	Title string   `json:"title" validate:"required,notblank,max=200" label:"Title"`
	Body  string   `json:"body" validate:"required,notblank,max=20000" label:"Body"`
	Tags  []string `json:"tags" validate:"max=10,dive,max=30" label:"Tags"`
}

type postPage struct {
	Posts   []models.Post `json:"posts"`
	HasMore bool          `json:"has_more"`
	// NextBefore is the "before" cursor for the following page.
	NextBefore string `json:"next_before,omitempty"`
}

type likeResult struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}
