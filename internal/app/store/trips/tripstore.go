// internal/app/store/trips/tripstore.go
package tripstore

import (
	"context"
	"time"

	"github.com/dalemusser/planora/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("trips")}
}

func (s *Store) Create(ctx context.Context, t models.Trip) (models.Trip, error) {
	now := time.Now().UTC()
	t.ID = primitive.NewObjectID()
	t.TitleCI = text.Fold(t.Title)
	t.CreatedAt = now
	t.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.Trip{}, err
	}
	return t, nil
}

// GetOwned loads a trip only if userID owns it. Returns mongo.ErrNoDocuments
// for both missing and foreign trips.
func (s *Store) GetOwned(ctx context.Context, id, userID primitive.ObjectID) (models.Trip, error) {
	var t models.Trip
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&t); err != nil {
		return models.Trip{}, err
	}
	return t, nil
}

// ListByUser returns a user's trips, newest first.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Trip, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Trip{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update replaces the editable fields of an owned trip and returns it.
func (s *Store) Update(ctx context.Context, t models.Trip) (models.Trip, error) {
	set := bson.M{
		"title":       t.Title,
		"title_ci":    text.Fold(t.Title),
		"destination": t.Destination,
		"start_date":  t.StartDate,
		"end_date":    t.EndDate,
		"notes":       t.Notes,
		"budget":      t.Budget,
		"travelers":   t.Travelers,
		"updated_at":  time.Now().UTC(),
	}
	var out models.Trip
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": t.ID, "user_id": t.UserID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		return models.Trip{}, err
	}
	return out, nil
}

// Delete removes an owned trip. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
