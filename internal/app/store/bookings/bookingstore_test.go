package bookingstore_test

import (
	"testing"
	"time"

	bookingstore "github.com/dalemusser/planora/internal/app/store/bookings"
	"github.com/dalemusser/planora/internal/domain/models"
	"github.com/dalemusser/planora/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func booking(user primitive.ObjectID, trip *primitive.ObjectID) models.Booking {
	return models.Booking{
		UserID:   user,
		TripID:   trip,
		Type:     "hotel",
		Provider: "Casa Azul",
		CheckIn:  time.Date(2026, 6, 1, 14, 0, 0, 0, time.UTC),
		Guests:   2,
		Currency: "EUR",
	}
}

func TestStore_Create_DefaultsConfirmed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := bookingstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	b, err := store.Create(ctx, booking(primitive.NewObjectID(), nil))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if b.Status != models.BookingConfirmed {
		t.Errorf("Status: got %q, want confirmed", b.Status)
	}
}

func TestStore_Cancel(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := bookingstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := primitive.NewObjectID()
	b, _ := store.Create(ctx, booking(user, nil))

	got, err := store.Cancel(ctx, b.ID, user)
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if got.Status != models.BookingCancelled {
		t.Errorf("Status: got %q", got.Status)
	}

	if _, err := store.Cancel(ctx, b.ID, user); err != bookingstore.ErrAlreadyCancelled {
		t.Errorf("expected ErrAlreadyCancelled, got %v", err)
	}
	if _, err := store.Cancel(ctx, b.ID, primitive.NewObjectID()); err != mongo.ErrNoDocuments {
		t.Errorf("expected mongo.ErrNoDocuments for other user, got %v", err)
	}
}

func TestStore_ListByUser_TripFilterAndDetach(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := bookingstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := primitive.NewObjectID()
	trip := primitive.NewObjectID()
	store.Create(ctx, booking(user, &trip))
	store.Create(ctx, booking(user, &trip))
	store.Create(ctx, booking(user, nil))

	all, _ := store.ListByUser(ctx, user, nil)
	if len(all) != 3 {
		t.Errorf("expected 3 bookings, got %d", len(all))
	}
	forTrip, _ := store.ListByUser(ctx, user, &trip)
	if len(forTrip) != 2 {
		t.Errorf("expected 2 trip bookings, got %d", len(forTrip))
	}

	n, err := store.DetachTrip(ctx, trip)
	if err != nil {
		t.Fatalf("DetachTrip failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 detached, got %d", n)
	}
	forTrip, _ = store.ListByUser(ctx, user, &trip)
	if len(forTrip) != 0 {
		t.Errorf("expected no bookings left on trip, got %d", len(forTrip))
	}
}
