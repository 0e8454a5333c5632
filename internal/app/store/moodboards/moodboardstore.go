// internal/app/store/moodboards/moodboardstore.go
package moodboardstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/planora/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrVersionConflict is returned when a compare-and-swap update finds the
// board at a different version than the caller read.
var ErrVersionConflict = errors.New("mood board was modified by someone else")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("moodboards")}
}

// Content is a partial update of a board's content fields.
// Nil fields are left unchanged.
type Content struct {
	Title          *string
	Description    *string
	ColorPalette   *[]string
	Themes         *[]string
	Activities     *[]string
	Accommodations *[]string
	Dining         *[]string
	Vibe           *string
	Elements       *[]models.BoardElement
	Settings       *map[string]any
	Metadata       *map[string]any
	IsPublic       *bool
}

func (c Content) set() bson.M {
	set := bson.M{}
	if c.Title != nil {
		set["title"] = *c.Title
		set["title_ci"] = text.Fold(*c.Title)
	}
	if c.Description != nil {
		set["description"] = *c.Description
	}
	if c.ColorPalette != nil {
		set["color_palette"] = nonNil(*c.ColorPalette)
	}
	if c.Themes != nil {
		set["themes"] = nonNil(*c.Themes)
	}
	if c.Activities != nil {
		set["activities"] = nonNil(*c.Activities)
	}
	if c.Accommodations != nil {
		set["accommodations"] = nonNil(*c.Accommodations)
	}
	if c.Dining != nil {
		set["dining"] = nonNil(*c.Dining)
	}
	if c.Vibe != nil {
		set["vibe"] = *c.Vibe
	}
	if c.Elements != nil {
		els := *c.Elements
		if els == nil {
			els = []models.BoardElement{}
		}
		set["elements"] = els
	}
	if c.Settings != nil {
		set["settings"] = *c.Settings
	}
	if c.Metadata != nil {
		set["metadata"] = *c.Metadata
	}
	if c.IsPublic != nil {
		set["is_public"] = *c.IsPublic
	}
	return set
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Create inserts a new board at version 1 with no messages.
func (s *Store) Create(ctx context.Context, b models.MoodBoard) (models.MoodBoard, error) {
	now := time.Now().UTC()
	b.ID = primitive.NewObjectID()
	b.TitleCI = text.Fold(b.Title)
	b.ColorPalette = nonNil(b.ColorPalette)
	b.Themes = nonNil(b.Themes)
	b.Activities = nonNil(b.Activities)
	b.Accommodations = nonNil(b.Accommodations)
	b.Dining = nonNil(b.Dining)
	if b.Elements == nil {
		b.Elements = []models.BoardElement{}
	}
	b.Version = 1
	b.MessageSeq = 0
	b.CreatedAt = now
	b.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, b); err != nil {
		return models.MoodBoard{}, err
	}
	return b, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.MoodBoard, error) {
	var b models.MoodBoard
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&b); err != nil {
		return models.MoodBoard{}, err
	}
	return b, nil
}

// Update applies c with a compare-and-swap on version and returns the
// updated board. When version is nil the currently stored version is used,
// so a concurrent writer between the read and the write still yields
// ErrVersionConflict. Returns mongo.ErrNoDocuments if the board is gone.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, version *int64, c Content) (models.MoodBoard, error) {
	expected := int64(0)
	if version != nil {
		expected = *version
	} else {
		cur, err := s.GetByID(ctx, id)
		if err != nil {
			return models.MoodBoard{}, err
		}
		expected = cur.Version
	}

	set := c.set()
	set["updated_at"] = time.Now().UTC()

	var out models.MoodBoard
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "version": expected},
		bson.M{"$set": set, "$inc": bson.M{"version": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if err == nil {
		return out, nil
	}
	if err != mongo.ErrNoDocuments {
		return models.MoodBoard{}, err
	}

	// Distinguish a missing board from a stale version.
	n, cerr := s.c.CountDocuments(ctx, bson.M{"_id": id})
	if cerr != nil {
		return models.MoodBoard{}, cerr
	}
	if n == 0 {
		return models.MoodBoard{}, mongo.ErrNoDocuments
	}
	return models.MoodBoard{}, ErrVersionConflict
}

// Delete removes a board by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListPublic returns public boards, newest first.
func (s *Store) ListPublic(ctx context.Context, limit int64) ([]models.MoodBoard, error) {
	return s.find(ctx, bson.M{"is_public": true}, limit)
}

// ListForUser returns boards owned by userID or whose id is in boardIDs,
// newest first.
func (s *Store) ListForUser(ctx context.Context, userID primitive.ObjectID, boardIDs []primitive.ObjectID) ([]models.MoodBoard, error) {
	or := bson.A{bson.M{"owner_id": userID}}
	if len(boardIDs) > 0 {
		or = append(or, bson.M{"_id": bson.M{"$in": boardIDs}})
	}
	return s.find(ctx, bson.M{"$or": or}, 0)
}

func (s *Store) find(ctx context.Context, filter bson.M, limit int64) ([]models.MoodBoard, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.MoodBoard{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// NextSeq atomically reserves the next message sequence number for a board.
// Returns mongo.ErrNoDocuments if the board does not exist.
func (s *Store) NextSeq(ctx context.Context, boardID primitive.ObjectID) (int64, error) {
	var doc struct {
		MessageSeq int64 `bson:"message_seq"`
	}
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": boardID},
		bson.M{"$inc": bson.M{"message_seq": 1}},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(bson.M{"message_seq": 1}),
	).Decode(&doc)
	if err != nil {
		return 0, err
	}
	return doc.MessageSeq, nil
}
