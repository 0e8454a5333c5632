// internal/app/features/moodboards/view.go
package moodboards

import (
	"context"

	"github.com/dalemusser/planora/internal/app/system/apperr"
	"github.com/dalemusser/planora/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// View is a board with owner and collaborator users expanded and its most
// recent messages attached.
type View struct {
	models.MoodBoard
	Owner         models.UserSummary    `json:"owner"`
	Collaborators []CollaboratorView    `json:"collaborators"`
	Messages      []models.BoardMessage `json:"messages"`
}

// CollaboratorView is a membership with the member's current user fields.
type CollaboratorView struct {
	models.Collaborator
	User models.UserSummary `json:"user"`
}

// view expands b. Users who no longer exist fall back to the snapshot taken
// at invite time.
func (s *Service) view(ctx context.Context, b models.MoodBoard) (View, error) {
	members, err := s.members.ListByBoard(ctx, b.ID)
	if err != nil {
		return View{}, apperr.Wrap(err, "")
	}

	ids := make([]primitive.ObjectID, 0, len(members)+1)
	ids = append(ids, b.OwnerID)
	for _, m := range members {
		ids = append(ids, m.UserID)
	}
	users, err := s.users.Summaries(ctx, ids)
	if err != nil {
		return View{}, apperr.Wrap(err, "")
	}

	msgs, err := s.messages.Recent(ctx, b.ID, ViewMessages)
	if err != nil {
		return View{}, apperr.Wrap(err, "")
	}

	v := View{
		MoodBoard:     b,
		Owner:         users[b.OwnerID],
		Collaborators: make([]CollaboratorView, 0, len(members)),
		Messages:      msgs,
	}
	if v.Owner.ID.IsZero() {
		v.Owner.ID = b.OwnerID
	}
	for _, m := range members {
		u, ok := users[m.UserID]
		if !ok {
			u = models.UserSummary{ID: m.UserID, Name: m.Name, Email: m.Email, Picture: m.Avatar}
		}
		v.Collaborators = append(v.Collaborators, CollaboratorView{Collaborator: m, User: u})
	}
	return v, nil
}
