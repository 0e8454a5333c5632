// internal/app/store/oauthstate/store.go
package oauthstate

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicate is returned by Put when the state value is already pending.
var ErrDuplicate = errors.New("oauth state already pending")

// Pending is an in-flight Google sign-in, keyed by the state value sent to
// the provider. Verifier is the PKCE secret; it never leaves the server.
type Pending struct {
	State     string    `bson:"state"`
	ReturnTo  string    `bson:"return_to,omitempty"`
	Verifier  string    `bson:"verifier,omitempty"`
	ExpiresAt time.Time `bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
}

// Store keeps pending sign-ins in the oauth_states collection.
type Store struct {
	c   *mongo.Collection
	now func() time.Time
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:   db.Collection("oauth_states"),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// EnsureIndexes makes state unique and lets Mongo's TTL monitor drop
// rows once expires_at passes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "state", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_state"),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("ttl_expires_at"),
		},
	})
	return err
}

// Put records p, stamping CreatedAt.
func (s *Store) Put(ctx context.Context, p Pending) error {
	p.CreatedAt = s.now()
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// Take removes and returns the unexpired sign-in for state. ok is false
// when there is none; a state can be taken at most once.
func (s *Store) Take(ctx context.Context, state string) (p Pending, ok bool, err error) {
	if state == "" {
		return Pending{}, false, nil
	}
	err = s.c.FindOneAndDelete(ctx, bson.M{
		"state":      state,
		"expires_at": bson.M{"$gt": s.now()},
	}).Decode(&p)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return Pending{}, false, nil
	case err != nil:
		return Pending{}, false, err
	}
	return p, true, nil
}

// CleanupExpired deletes expired rows the TTL monitor has not reached yet
// and reports how many went.
func (s *Store) CleanupExpired(ctx context.Context) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": s.now()}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
