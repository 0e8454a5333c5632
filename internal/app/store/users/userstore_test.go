package userstore_test

import (
	"testing"

	userstore "github.com/dalemusser/planora/internal/app/store/users"
	"github.com/dalemusser/planora/internal/domain/models"
	"github.com/dalemusser/planora/internal/testutil"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestCreate_NormalizesAndDefaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, err := s.Create(ctx, models.User{
		Name:         "  Ana Souza ",
		Email:        " Ana@Example.COM ",
		PasswordHash: "$2a$10$hash",
	})
	require.NoError(t, err)

	assert.False(t, u.ID.IsZero())
	assert.Equal(t, "Ana Souza", u.Name)
	assert.Equal(t, text.Fold("Ana Souza"), u.NameCI)
	assert.Equal(t, "ana@example.com", u.Email)
	assert.Equal(t, models.UserActive, u.Status)
	assert.Equal(t, models.AuthPassword, u.AuthMethod)
	assert.False(t, u.CreatedAt.IsZero())
	assert.Equal(t, u.CreatedAt, u.UpdatedAt)
}

func TestCreate_Rejects(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tests := []struct {
		name string
		u    models.User
	}{
		{"password account without hash", models.User{Name: "No Hash", Email: "nohash@example.com"}},
		{"unknown auth method", models.User{Name: "X", Email: "x@example.com", AuthMethod: "saml"}},
		{"unknown status", models.User{Name: "Y", Email: "y@example.com", PasswordHash: "h", Status: "banned"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Create(ctx, tt.u)
			assert.Error(t, err)
		})
	}

	_, err := s.Create(ctx, models.User{Name: "First", Email: "dup@example.com", PasswordHash: "h"})
	require.NoError(t, err)
	_, err = s.Create(ctx, models.User{Name: "Second", Email: "DUP@example.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, userstore.ErrDuplicateEmail)
}

func TestLookups(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := userstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	bea := fx.CreateUser(ctx, "Bea", "bea@example.com")
	caio := fx.CreateUser(ctx, "Caio", "caio@example.com")

	got, err := s.GetByID(ctx, bea.ID)
	require.NoError(t, err)
	assert.Equal(t, "bea@example.com", got.Email)

	_, err = s.GetByID(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, mongo.ErrNoDocuments)

	got, err = s.GetByEmail(ctx, "  CAIO@example.com")
	require.NoError(t, err)
	assert.Equal(t, caio.ID, got.ID)

	sums, err := s.Summaries(ctx, []primitive.ObjectID{bea.ID, caio.ID, primitive.NewObjectID()})
	require.NoError(t, err)
	require.Len(t, sums, 2)
	assert.Equal(t, "Caio", sums[caio.ID].Name)

	empty, err := s.Summaries(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestUpsertGoogle_CreatesFindsAndLinks(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := userstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, created, err := s.UpsertGoogle(ctx, userstore.GoogleProfile{
		Sub: "g-1", Email: "new@example.com", Name: "New Person", Picture: "https://img.example.com/1",
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.AuthGoogle, u.AuthMethod)
	assert.Equal(t, "g-1", u.GoogleID)

	again, created, err := s.UpsertGoogle(ctx, userstore.GoogleProfile{Sub: "g-1", Email: "new@example.com"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, u.ID, again.ID)

	pw := fx.CreateUser(ctx, "Pass", "pass@example.com")
	linked, created, err := s.UpsertGoogle(ctx, userstore.GoogleProfile{Sub: "g-2", Email: "PASS@example.com"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, pw.ID, linked.ID)
	assert.Equal(t, "g-2", linked.GoogleID)

	nameless, _, err := s.UpsertGoogle(ctx, userstore.GoogleProfile{Sub: "g-3", Email: "anon@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "anon@example.com", nameless.Name)
}

func TestFetchUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := userstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateUser(ctx, "Dani", "dani@example.com")

	su := s.FetchUser(ctx, u.ID.Hex())
	require.NotNil(t, su)
	assert.Equal(t, u.ID.Hex(), su.ID)
	assert.Equal(t, "Dani", su.Name)
	assert.Equal(t, "dani@example.com", su.Email)

	assert.Nil(t, s.FetchUser(ctx, "not-hex"))
	assert.Nil(t, s.FetchUser(ctx, primitive.NewObjectID().Hex()))

	require.NoError(t, s.SetStatus(ctx, u.ID, models.UserDisabled))
	assert.Nil(t, s.FetchUser(ctx, u.ID.Hex()))

	assert.Error(t, s.SetStatus(ctx, u.ID, "archived"))
	assert.ErrorIs(t, s.SetStatus(ctx, primitive.NewObjectID(), models.UserActive), mongo.ErrNoDocuments)
}
