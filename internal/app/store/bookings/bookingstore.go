// internal/app/store/bookings/bookingstore.go
package bookingstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/planora/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrAlreadyCancelled is returned by Cancel for a booking that is not confirmed.
var ErrAlreadyCancelled = errors.New("booking is already cancelled")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("bookings")}
}

func (s *Store) Create(ctx context.Context, b models.Booking) (models.Booking, error) {
	now := time.Now().UTC()
	b.ID = primitive.NewObjectID()
	if b.Status == "" {
		b.Status = models.BookingConfirmed
	}
	b.CreatedAt = now
	b.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, b); err != nil {
		return models.Booking{}, err
	}
	return b, nil
}

// GetOwned loads a booking only if userID owns it.
func (s *Store) GetOwned(ctx context.Context, id, userID primitive.ObjectID) (models.Booking, error) {
	var b models.Booking
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&b); err != nil {
		return models.Booking{}, err
	}
	return b, nil
}

// ListByUser returns a user's bookings by check-in date, latest first.
// A non-nil tripID narrows the list to that trip.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID, tripID *primitive.ObjectID) ([]models.Booking, error) {
	filter := bson.M{"user_id": userID}
	if tripID != nil {
		filter["trip_id"] = *tripID
	}
	opts := options.Find().SetSort(bson.D{{Key: "check_in", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Booking{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Cancel moves an owned, confirmed booking to cancelled.
func (s *Store) Cancel(ctx context.Context, id, userID primitive.ObjectID) (models.Booking, error) {
	var out models.Booking
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "user_id": userID, "status": models.BookingConfirmed},
		bson.M{"$set": bson.M{"status": models.BookingCancelled, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if err == nil {
		return out, nil
	}
	if err != mongo.ErrNoDocuments {
		return models.Booking{}, err
	}
	if _, gerr := s.GetOwned(ctx, id, userID); gerr != nil {
		return models.Booking{}, gerr
	}
	return models.Booking{}, ErrAlreadyCancelled
}

// Delete removes an owned booking. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DetachTrip clears trip_id on every booking of a deleted trip.
func (s *Store) DetachTrip(ctx context.Context, tripID primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"trip_id": tripID},
		bson.M{"$unset": bson.M{"trip_id": ""}, "$set": bson.M{"updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
