package validators_test

import (
	"testing"
	"time"

	"github.com/dalemusser/planora/internal/app/system/validators"
	"github.com/dalemusser/planora/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func setup(t *testing.T) *mongo.Database {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	return db
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesCollections(t *testing.T) {
	db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	expected := []string{
		"users", "moodboards", "board_members", "board_messages",
		"trips", "bookings", "saved_places", "reviews",
		"posts", "login_records", "audit_events", "oauth_states",
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames failed: %v", err)
	}
	have := make(map[string]bool)
	for _, n := range names {
		have[n] = true
	}
	for _, want := range expected {
		if !have[want] {
			t.Errorf("expected collection %q to exist", want)
		}
	}
}

func TestValidators(t *testing.T) {
	db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now().UTC()
	owner := primitive.NewObjectID()

	tests := []struct {
		name    string
		coll    string
		doc     bson.M
		wantErr bool
	}{
		{"valid user", "users", bson.M{"name": "Alice", "email": "a@example.com", "status": "active", "auth_method": "password"}, false},
		{"user missing email", "users", bson.M{"name": "Alice", "status": "active", "auth_method": "password"}, true},
		{"user blank name", "users", bson.M{"name": "  ", "email": "a@example.com", "status": "active", "auth_method": "google"}, true},
		{"user bad auth method", "users", bson.M{"name": "Alice", "email": "a@example.com", "status": "active", "auth_method": "clever"}, true},

		{"valid board", "moodboards", bson.M{"owner_id": owner, "title": "Japan", "is_public": false, "version": int64(1)}, false},
		{"board version zero", "moodboards", bson.M{"owner_id": owner, "title": "Japan", "is_public": false, "version": 0}, true},

		{"valid member", "board_members", bson.M{"board_id": owner, "user_id": owner, "role": "editor", "status": "pending"}, false},
		{"member bad role", "board_members", bson.M{"board_id": owner, "user_id": owner, "role": "admin", "status": "pending"}, true},
		{"member bad status", "board_members", bson.M{"board_id": owner, "user_id": owner, "role": "viewer", "status": "maybe"}, true},

		{"valid message", "board_messages", bson.M{"board_id": owner, "seq": int64(1), "text": "hi", "type": "text", "created_at": now}, false},
		{"message empty text", "board_messages", bson.M{"board_id": owner, "seq": int64(1), "text": "", "type": "text", "created_at": now}, true},

		{"valid trip", "trips", bson.M{"user_id": owner, "title": "t", "destination": "d", "travelers": 2}, false},
		{"trip zero travelers", "trips", bson.M{"user_id": owner, "title": "t", "destination": "d", "travelers": 0}, true},

		{"valid booking", "bookings", bson.M{"user_id": owner, "type": "hotel", "provider": "p", "check_in": now, "currency": "EUR", "status": "confirmed"}, false},
		{"booking lowercase currency", "bookings", bson.M{"user_id": owner, "type": "hotel", "provider": "p", "check_in": now, "currency": "eur", "status": "confirmed"}, true},
		{"booking bad type", "bookings", bson.M{"user_id": owner, "type": "boat", "provider": "p", "check_in": now, "currency": "EUR", "status": "confirmed"}, true},

		{"valid place", "saved_places", bson.M{"user_id": owner, "place_id": "x", "name": "n", "lat": 45.0, "lng": 7.5}, false},
		{"place bad lat", "saved_places", bson.M{"user_id": owner, "place_id": "x", "name": "n", "lat": 95.0, "lng": 7.5}, true},

		{"valid review", "reviews", bson.M{"author_id": owner, "target_type": "hotel", "target_id": "h", "rating": 5}, false},
		{"review rating six", "reviews", bson.M{"author_id": owner, "target_type": "hotel", "target_id": "h", "rating": 6}, true},
		{"review bad target", "reviews", bson.M{"author_id": owner, "target_type": "car", "target_id": "h", "rating": 3}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.Collection(tt.coll).InsertOne(ctx, tt.doc)
			if tt.wantErr && err == nil {
				t.Errorf("expected validation error inserting into %s", tt.coll)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("insert into %s failed: %v", tt.coll, err)
			}
		})
	}
}
