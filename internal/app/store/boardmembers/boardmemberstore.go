// internal/app/store/boardmembers/boardmemberstore.go
package boardmemberstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/planora/internal/app/system/normalize"
	"github.com/dalemusser/planora/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicate is returned when the user or email already has a membership
// on the board.
var ErrDuplicate = errors.New("user is already a collaborator on this board")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("board_members")}
}

// Insert adds a membership. Email is normalized before writing.
func (s *Store) Insert(ctx context.Context, m models.Collaborator) (models.Collaborator, error) {
	now := time.Now().UTC()
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	m.Email = normalize.Email(m.Email)
	m.Role = normalize.Role(m.Role)
	m.CreatedAt = now
	m.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Collaborator{}, ErrDuplicate
		}
		return models.Collaborator{}, err
	}
	return m, nil
}

// Get returns the membership of userID on boardID, or mongo.ErrNoDocuments.
func (s *Store) Get(ctx context.Context, boardID, userID primitive.ObjectID) (models.Collaborator, error) {
	var m models.Collaborator
	err := s.c.FindOne(ctx, bson.M{"board_id": boardID, "user_id": userID}).Decode(&m)
	return m, err
}

// ExistsByEmail reports whether email has a membership on boardID in any status.
func (s *Store) ExistsByEmail(ctx context.Context, boardID primitive.ObjectID, email string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"board_id": boardID, "email": normalize.Email(email)}).Err()
	if err == nil {
		return true, nil
	}
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return false, err
}

// ListByBoard returns a board's memberships in invitation order.
func (s *Store) ListByBoard(ctx context.Context, boardID primitive.ObjectID) ([]models.Collaborator, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"board_id": boardID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Collaborator{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// BoardIDsForUser returns the ids of boards where userID has the given status.
func (s *Store) BoardIDsForUser(ctx context.Context, userID primitive.ObjectID, status string) ([]primitive.ObjectID, error) {
	opts := options.Find().SetProjection(bson.M{"board_id": 1})
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID, "status": status}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var row struct {
			BoardID primitive.ObjectID `bson:"board_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		ids = append(ids, row.BoardID)
	}
	return ids, cur.Err()
}

// UpdateStatus moves a membership from one status to another. It only
// matches when the current status equals from, so concurrent answers to the
// same invitation cannot both succeed. Returns mongo.ErrNoDocuments when
// nothing matched.
func (s *Store) UpdateStatus(ctx context.Context, boardID, userID primitive.ObjectID, from, to string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"board_id": boardID, "user_id": userID, "status": from},
		bson.M{"$set": bson.M{"status": to, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes userID's membership on boardID. Returns the number removed (0 or 1).
func (s *Store) Delete(ctx context.Context, boardID, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"board_id": boardID, "user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByBoard removes every membership of a board.
func (s *Store) DeleteByBoard(ctx context.Context, boardID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"board_id": boardID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
