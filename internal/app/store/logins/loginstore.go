// internal/app/store/logins/loginstore.go
package loginstore

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/planora/internal/app/system/ratelimit"
	"github.com/dalemusser/planora/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// maxUserAgent bounds the stored User-Agent header.
const maxUserAgent = 256

// Store is the login_records collection.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("login_records")}
}

// Record stores a successful sign-in by userID through provider, taking
// the client address and agent from r.
func (s *Store) Record(ctx context.Context, r *http.Request, userID primitive.ObjectID, provider string) error {
	ua := r.UserAgent()
	if len(ua) > maxUserAgent {
		ua = ua[:maxUserAgent]
	}
	_, err := s.c.InsertOne(ctx, models.LoginRecord{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Provider:  provider,
		IP:        ratelimit.ClientIP(r),
		UserAgent: ua,
		CreatedAt: time.Now().UTC(),
	})
	return err
}

// Recent returns up to limit of userID's sign-ins, newest first. The
// result is never nil.
func (s *Store) Recent(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.LoginRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	out := []models.LoginRecord{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
