// internal/app/store/savedplaces/savedplacestore.go
package savedplacestore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/planora/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicate is returned when the user already saved the place.
var ErrDuplicate = errors.New("place is already saved")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("saved_places")}
}

func (s *Store) Create(ctx context.Context, p models.SavedPlace) (models.SavedPlace, error) {
	p.ID = primitive.NewObjectID()
	p.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		if wafflemongo.IsDup(err) {
			return models.SavedPlace{}, ErrDuplicate
		}
		return models.SavedPlace{}, err
	}
	return p, nil
}

// ListByUser returns a user's saved places, newest first. An empty category
// returns all of them.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID, category string) ([]models.SavedPlace, error) {
	filter := bson.M{"user_id": userID}
	if category != "" {
		filter["category"] = category
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.SavedPlace{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes an owned saved place. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
