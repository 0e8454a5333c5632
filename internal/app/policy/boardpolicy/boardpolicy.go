// internal/app/policy/boardpolicy/boardpolicy.go
package boardpolicy

import (
	"context"
	"errors"

	"github.com/dalemusser/planora/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CanView reports whether userID may read board b. m is userID's membership
// on b, or nil if there is none.
//   - The owner always can
//   - Any accepted collaborator can, whatever the role
func CanView(b models.MoodBoard, m *models.Collaborator, userID primitive.ObjectID) bool {
	if b.OwnerID == userID {
		return true
	}
	return m != nil && m.UserID == userID && m.Status == models.StatusAccepted
}

// CanEdit reports whether userID may change board content or membership.
// Accepted viewers cannot; pending and declined invitees never can.
func CanEdit(b models.MoodBoard, m *models.Collaborator, userID primitive.ObjectID) bool {
	if b.OwnerID == userID {
		return true
	}
	return m != nil && m.UserID == userID &&
		m.Status == models.StatusAccepted &&
		m.Role != models.RoleViewer
}

// CanDelete reports whether userID may delete the board. Owner only.
func CanDelete(b models.MoodBoard, userID primitive.ObjectID) bool {
	return b.OwnerID == userID
}

// Find returns userID's entry in members, or nil.
func Find(members []models.Collaborator, userID primitive.ObjectID) *models.Collaborator {
	for i := range members {
		if members[i].UserID == userID {
			return &members[i]
		}
	}
	return nil
}

// MemberGetter loads one membership. boardmemberstore.Store satisfies it.
type MemberGetter interface {
	Get(ctx context.Context, boardID, userID primitive.ObjectID) (models.Collaborator, error)
}

// Access is the permission set of one user on one board, computed from the
// membership as stored right now.
type Access struct {
	Member *models.Collaborator
	View   bool
	Edit   bool
	Delete bool
}

// Load reads userID's membership on b and evaluates every check.
// Returns an error only if the lookup itself fails.
func Load(ctx context.Context, members MemberGetter, b models.MoodBoard, userID primitive.ObjectID) (Access, error) {
	var m *models.Collaborator
	got, err := members.Get(ctx, b.ID, userID)
	switch {
	case err == nil:
		m = &got
	case errors.Is(err, mongo.ErrNoDocuments):
	default:
		return Access{}, err
	}
	return Access{
		Member: m,
		View:   CanView(b, m, userID),
		Edit:   CanEdit(b, m, userID),
		Delete: CanDelete(b, userID),
	}, nil
}
