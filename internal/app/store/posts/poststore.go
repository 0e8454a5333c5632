// internal/app/store/posts/poststore.go
package poststore

import (
	"context"
	"time"

	"github.com/dalemusser/planora/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("posts")}
}

func (s *Store) Create(ctx context.Context, p models.Post) (models.Post, error) {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	if p.Tags == nil {
		p.Tags = []string{}
	}
	p.Likes = []primitive.ObjectID{}
	p.LikeCount = 0
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Post{}, err
	}
	return p, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Post, error) {
	var p models.Post
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return models.Post{}, err
	}
	return p, nil
}

// ListQuery selects a page of posts, newest first.
type ListQuery struct {
	Tag      string
	AuthorID *primitive.ObjectID
	BeforeID *primitive.ObjectID // keyset cursor: only posts older than this id
	Limit    int64
}

// List returns posts matching q ordered by _id descending (creation order).
func (s *Store) List(ctx context.Context, q ListQuery) ([]models.Post, error) {
	filter := bson.M{}
	if q.Tag != "" {
		filter["tags"] = q.Tag
	}
	if q.AuthorID != nil {
		filter["author_id"] = *q.AuthorID
	}
	if q.BeforeID != nil {
		filter["_id"] = bson.M{"$lt": *q.BeforeID}
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetProjection(bson.M{"likes": 0})
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Post{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update replaces title, body, rendered body and tags.
func (s *Store) Update(ctx context.Context, p models.Post) (models.Post, error) {
	var out models.Post
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": p.ID},
		bson.M{"$set": bson.M{
			"title":      p.Title,
			"body":       p.Body,
			"body_html":  p.BodyHTML,
			"tags":       p.Tags,
			"updated_at": time.Now().UTC(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		return models.Post{}, err
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ToggleLike adds userID's like, or removes it if already present. Each
// branch is a single conditional update so like_count stays in step with
// the likes array. A concurrent toggle by the same user can make both
// branches miss; the pair is retried, then the stored state is returned.
// Returns the new liked state and count.
func (s *Store) ToggleLike(ctx context.Context, id, userID primitive.ObjectID) (bool, int, error) {
	for range toggleAttempts {
		liked, count, err := s.toggleOnce(ctx, id, userID)
		if err != mongo.ErrNoDocuments {
			return liked, count, err
		}
	}
	return s.likeState(ctx, id, userID)
}

const toggleAttempts = 2

func (s *Store) toggleOnce(ctx context.Context, id, userID primitive.ObjectID) (bool, int, error) {
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"like_count": 1})

	var out struct {
		LikeCount int `bson:"like_count"`
	}

	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "likes": userID},
		bson.M{"$pull": bson.M{"likes": userID}, "$inc": bson.M{"like_count": -1}},
		opts,
	).Decode(&out)
	if err == nil {
		return false, out.LikeCount, nil
	}
	if err != mongo.ErrNoDocuments {
		return false, 0, err
	}

	err = s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "likes": bson.M{"$ne": userID}},
		bson.M{"$addToSet": bson.M{"likes": userID}, "$inc": bson.M{"like_count": 1}},
		opts,
	).Decode(&out)
	if err != nil {
		return false, 0, err
	}
	return true, out.LikeCount, nil
}

// likeState reads whether userID likes the post. A missing post is
// mongo.ErrNoDocuments.
func (s *Store) likeState(ctx context.Context, id, userID primitive.ObjectID) (bool, int, error) {
	var out struct {
		LikeCount int                  `bson:"like_count"`
		Likes     []primitive.ObjectID `bson:"likes"`
	}
	opts := options.FindOne().SetProjection(bson.M{"like_count": 1, "likes": bson.M{"$elemMatch": bson.M{"$eq": userID}}})
	if err := s.c.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&out); err != nil {
		return false, 0, err
	}
	return len(out.Likes) > 0, out.LikeCount, nil
}
