package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/planora/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
// Calling it again on the same request adds to the existing route context.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, _ := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if rctx == nil {
		rctx = chi.NewRouteContext()
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}
	rctx.URLParams.Add(key, value)
	return r
}

// FixturePassword is the plaintext password of users made by CreateUser.
const FixturePassword = "correct horse battery"

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts an active password user whose password is FixturePassword.
func (f *Fixtures) CreateUser(ctx context.Context, name, email string) models.User {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(FixturePassword), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("bcrypt: %v", err)
	}
	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		Name:         name,
		NameCI:       text.Fold(name),
		Email:        email,
		PasswordHash: string(hash),
		AuthMethod:   models.AuthPassword,
		Status:       models.UserActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateBoard inserts a board owned by owner together with the owner's
// accepted membership.
func (f *Fixtures) CreateBoard(ctx context.Context, owner models.User, title string, public bool) models.MoodBoard {
	f.t.Helper()

	now := time.Now().UTC()
	b := models.MoodBoard{
		ID:             primitive.NewObjectID(),
		OwnerID:        owner.ID,
		Title:          title,
		TitleCI:        text.Fold(title),
		ColorPalette:   []string{},
		Themes:         []string{},
		Activities:     []string{},
		Accommodations: []string{},
		Dining:         []string{},
		Elements:       []models.BoardElement{},
		IsPublic:       public,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := f.db.Collection("moodboards").InsertOne(ctx, b); err != nil {
		f.t.Fatalf("failed to create test board: %v", err)
	}
	f.AddCollaborator(ctx, b.ID, owner, models.RoleOwner, models.StatusAccepted)
	return b
}

// AddCollaborator inserts a membership directly.
func (f *Fixtures) AddCollaborator(ctx context.Context, boardID primitive.ObjectID, u models.User, role, status string) models.Collaborator {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.Collaborator{
		ID:        primitive.NewObjectID(),
		BoardID:   boardID,
		UserID:    u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Avatar:    u.Picture,
		Role:      role,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("board_members").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to add collaborator: %v", err)
	}
	return m
}
