package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/planora/internal/app/system/auth"
	"github.com/dalemusser/planora/internal/app/system/normalize"
	"github.com/dalemusser/planora/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store is the users collection. It also serves as the session
// manager's auth.UserFetcher.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	errBadStatus      = errors.New(`status must be "active"|"disabled"`)
	errBadAuthMethod  = errors.New(`auth_method must be "password"|"google"`)
	errNeedsPassword  = errors.New("password accounts need a password hash")
)

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Summaries loads the public projection for each id. Unknown ids are
// absent from the result map.
func (s *Store) Summaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserSummary, error) {
	out := make(map[primitive.ObjectID]models.UserSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	proj := options.Find().SetProjection(bson.M{"_id": 1, "name": 1, "email": 1, "picture": 1})
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, proj)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var us models.UserSummary
		if err := cur.Decode(&us); err != nil {
			return nil, err
		}
		out[us.ID] = us
	}
	return out, cur.Err()
}

// Create inserts a new user after normalizing & validating fields.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.Name = normalize.Name(u.Name)
	u.NameCI = text.Fold(u.Name)
	u.Email = normalize.Email(u.Email)
	u.AuthMethod = normalize.AuthMethod(u.AuthMethod)
	if u.AuthMethod == "" {
		u.AuthMethod = models.AuthPassword
	}
	if u.Status == "" {
		u.Status = models.UserActive
	}

	switch u.Status {
	case models.UserActive, models.UserDisabled:
	default:
		return models.User{}, errBadStatus
	}
	switch u.AuthMethod {
	case models.AuthPassword:
		if u.PasswordHash == "" {
			return models.User{}, errNeedsPassword
		}
	case models.AuthGoogle:
	default:
		return models.User{}, errBadAuthMethod
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// GoogleProfile is the subset of the Google userinfo response we keep.
type GoogleProfile struct {
	Sub     string
	Email   string
	Name    string
	Picture string
}

// UpsertGoogle links a Google identity to a user. Lookup is by google_id
// first, then by email (linking an existing password account). A new
// google account is created when neither matches.
func (s *Store) UpsertGoogle(ctx context.Context, p GoogleProfile) (models.User, bool, error) {
	email := normalize.Email(p.Email)
	now := time.Now().UTC()

	filter := bson.M{"$or": bson.A{
		bson.M{"google_id": p.Sub},
		bson.M{"email": email},
	}}
	set := bson.M{
		"google_id":  p.Sub,
		"updated_at": now,
	}
	if p.Picture != "" {
		set["picture"] = p.Picture
	}

	var existing models.User
	err := s.c.FindOneAndUpdate(ctx, filter, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&existing)
	if err == nil {
		return existing, false, nil
	}
	if err != mongo.ErrNoDocuments {
		return models.User{}, false, err
	}

	name := p.Name
	if normalize.Name(name) == "" {
		name = email
	}
	created, err := s.Create(ctx, models.User{
		Name:       name,
		Email:      email,
		GoogleID:   p.Sub,
		Picture:    p.Picture,
		AuthMethod: models.AuthGoogle,
	})
	if err != nil {
		return models.User{}, false, err
	}
	return created, true, nil
}

// SetStatus changes a user's status ("active" | "disabled").
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	status = normalize.Status(status)
	if status != models.UserActive && status != models.UserDisabled {
		return errBadStatus
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// sessionFields is what FetchUser reads on every authenticated request.
var sessionFields = bson.M{"_id": 1, "name": 1, "email": 1, "picture": 1, "status": 1}

// FetchUser loads the signed-in user for a token subject. A malformed
// id, a missing user, a disabled user and a lookup error all give nil.
func (s *Store) FetchUser(ctx context.Context, userID string) *auth.SessionUser {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil
	}
	var u models.User
	err = s.c.FindOne(ctx, bson.M{"_id": id}, options.FindOne().SetProjection(sessionFields)).Decode(&u)
	if err != nil || normalize.Status(u.Status) == models.UserDisabled {
		return nil
	}
	return &auth.SessionUser{ID: u.ID.Hex(), Name: u.Name, Email: u.Email, Picture: u.Picture}
}
