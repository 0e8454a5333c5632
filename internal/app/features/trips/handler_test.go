package trips_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/planora/internal/app/features/trips"
	"github.com/dalemusser/planora/internal/domain/models"
	"github.com/dalemusser/planora/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newHandler(t *testing.T) (*trips.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return trips.NewHandler(db, zap.NewNop()), testutil.NewFixtures(t, db)
}

func create(t *testing.T, h *trips.Handler, u models.User, body map[string]any) (*testutil.ResponseRecorder, models.Trip) {
	t.Helper()
	rec := testutil.NewRecorder()
	h.HandleCreate(rec, testutil.WithUser(testutil.NewJSONRequest(http.MethodPost, "/", body), testutil.AsTestUser(u)))
	var out models.Trip
	if rec.Code == http.StatusCreated {
		rec.DecodeEnvelope(t, &out)
	}
	return rec, out
}

func TestCreate(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	a := fx.CreateUser(ctx, "Alice", "alice@example.com")

	rec, trip := create(t, h, a, map[string]any{
		"title": "Japan", "destination": "Tokyo",
		"start_date": "2026-04-01T00:00:00Z", "end_date": "2026-04-10T00:00:00Z",
	})
	rec.AssertStatus(t, http.StatusCreated)
	assert.Equal(t, a.ID, trip.UserID)
	assert.Equal(t, 1, trip.Travelers, "travelers defaults to 1")

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing destination", map[string]any{"title": "x"}},
		{"negative budget", map[string]any{"title": "x", "destination": "y", "budget": -1}},
		{"end before start", map[string]any{"title": "x", "destination": "y",
			"start_date": "2026-04-10T00:00:00Z", "end_date": "2026-04-01T00:00:00Z"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := create(t, h, a, tt.body)
			rec.AssertStatus(t, http.StatusBadRequest)
		})
	}
}

func TestOwnership(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	a := fx.CreateUser(ctx, "Alice", "alice@example.com")
	b := fx.CreateUser(ctx, "Bruno", "bruno@example.com")
	_, trip := create(t, h, a, map[string]any{"title": "Peru", "destination": "Cusco"})

	get := func(u models.User, id string) int {
		req := testutil.NewAuthenticatedRequest(http.MethodGet, "/", testutil.AsTestUser(u))
		rec := testutil.NewRecorder()
		h.ServeTrip(rec, testutil.WithChiURLParam(req, "id", id))
		return rec.Code
	}
	assert.Equal(t, http.StatusOK, get(a, trip.ID.Hex()))
	assert.Equal(t, http.StatusNotFound, get(b, trip.ID.Hex()), "other users see not found")
	assert.Equal(t, http.StatusNotFound, get(a, "nope"))

	req := testutil.WithUser(testutil.NewJSONRequest(http.MethodPut, "/", map[string]any{"title": "Mine", "destination": "Lima"}), testutil.AsTestUser(b))
	rec := testutil.NewRecorder()
	h.HandleUpdate(rec, testutil.WithChiURLParam(req, "id", trip.ID.Hex()))
	rec.AssertStatus(t, http.StatusNotFound)

	req = testutil.NewAuthenticatedRequest(http.MethodDelete, "/", testutil.AsTestUser(b))
	rec = testutil.NewRecorder()
	h.HandleDelete(rec, testutil.WithChiURLParam(req, "id", trip.ID.Hex()))
	rec.AssertStatus(t, http.StatusNotFound)

	rec = testutil.NewRecorder()
	h.ServeList(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/", testutil.AsTestUser(b)))
	var list []models.Trip
	rec.DecodeEnvelope(t, &list)
	assert.Empty(t, list)
}

func TestUpdateAndDelete_DetachesBookings(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	a := fx.CreateUser(ctx, "Alice", "alice@example.com")
	_, trip := create(t, h, a, map[string]any{"title": "Peru", "destination": "Cusco"})

	req := testutil.WithUser(testutil.NewJSONRequest(http.MethodPut, "/", map[string]any{
		"title": "Peru & Bolivia", "destination": "Cusco", "travelers": 3,
	}), testutil.AsTestUser(a))
	rec := testutil.NewRecorder()
	h.HandleUpdate(rec, testutil.WithChiURLParam(req, "id", trip.ID.Hex()))
	rec.AssertStatus(t, http.StatusOK)
	var up models.Trip
	rec.DecodeEnvelope(t, &up)
	assert.Equal(t, "Peru & Bolivia", up.Title)
	assert.Equal(t, 3, up.Travelers)

	tripID := trip.ID
	bk, err := h.Bookings.Create(ctx, models.Booking{UserID: a.ID, TripID: &tripID, Type: "hotel", Provider: "Inn", Currency: "USD"})
	require.NoError(t, err)

	req = testutil.NewAuthenticatedRequest(http.MethodDelete, "/", testutil.AsTestUser(a))
	rec = testutil.NewRecorder()
	h.HandleDelete(rec, testutil.WithChiURLParam(req, "id", trip.ID.Hex()))
	rec.AssertStatus(t, http.StatusOK)

	got, err := h.Bookings.GetOwned(ctx, bk.ID, a.ID)
	require.NoError(t, err)
	assert.Nil(t, got.TripID)

	_, err = h.Trips.GetOwned(ctx, trip.ID, a.ID)
	assert.Error(t, err)
}
