// internal/app/store/boardmessages/boardmessagestore.go
package boardmessagestore

import (
	"context"
	"time"

	"github.com/dalemusser/planora/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store is append-only: there is no update, and deletes only happen as a
// cascade when the board is removed.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("board_messages")}
}

// Append inserts m. Seq must already be reserved on the board.
func (s *Store) Append(ctx context.Context, m models.BoardMessage) (models.BoardMessage, error) {
	m.ID = primitive.NewObjectID()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		return models.BoardMessage{}, err
	}
	return m, nil
}

// List returns up to limit messages with seq > after, in seq order.
func (s *Store) List(ctx context.Context, boardID primitive.ObjectID, after int64, limit int64) ([]models.BoardMessage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "seq", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, bson.M{"board_id": boardID, "seq": bson.M{"$gt": after}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.BoardMessage{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Recent returns the newest limit messages of a board, in seq order.
func (s *Store) Recent(ctx context.Context, boardID primitive.ObjectID, limit int64) ([]models.BoardMessage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "seq", Value: -1}}).SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{"board_id": boardID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.BoardMessage{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// DeleteByBoard removes a board's whole log.
func (s *Store) DeleteByBoard(ctx context.Context, boardID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"board_id": boardID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
