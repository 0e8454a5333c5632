// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func named(name string, keys bson.D) mongo.IndexModel {
	return mongo.IndexModel{Keys: keys, Options: options.Index().SetName(name)}
}

func unique(name string, keys bson.D) mongo.IndexModel {
	return mongo.IndexModel{Keys: keys, Options: options.Index().SetName(name).SetUnique(true)}
}

func asc(fields ...string) bson.D {
	d := make(bson.D, 0, len(fields))
	for _, f := range fields {
		if rest, ok := strings.CutPrefix(f, "-"); ok {
			d = append(d, bson.E{Key: rest, Value: -1})
			continue
		}
		d = append(d, bson.E{Key: f, Value: 1})
	}
	return d
}

// set is every index planora expects, by collection. A leading "-" on a
// field sorts it descending.
var set = []struct {
	coll   string
	models []mongo.IndexModel
}{
	{"users", []mongo.IndexModel{
		// email is the login identity and the invite key
		unique("uniq_users_email", asc("email")),
		{
			Keys: asc("google_id"),
			Options: options.Index().
				SetName("uniq_users_google_id").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"google_id": bson.M{"$type": "string"}}),
		},
	}},
	{"moodboards", []mongo.IndexModel{
		named("idx_boards_owner_created", asc("owner_id", "-created_at")),
		named("idx_boards_public_created", asc("is_public", "-created_at")),
	}},
	{"board_members", []mongo.IndexModel{
		unique("uniq_bm_board_user", asc("board_id", "user_id")),
		unique("uniq_bm_board_email", asc("board_id", "email")),
		named("idx_bm_user_status", asc("user_id", "status")),
	}},
	{"board_messages", []mongo.IndexModel{
		unique("uniq_bmsg_board_seq", asc("board_id", "seq")),
	}},
	{"trips", []mongo.IndexModel{
		named("idx_trips_user_created", asc("user_id", "-created_at")),
	}},
	{"bookings", []mongo.IndexModel{
		named("idx_bookings_user_checkin", asc("user_id", "-check_in")),
		named("idx_bookings_trip", asc("trip_id")),
	}},
	{"saved_places", []mongo.IndexModel{
		unique("uniq_places_user_place", asc("user_id", "place_id")),
		named("idx_places_user_created", asc("user_id", "-created_at")),
	}},
	{"posts", []mongo.IndexModel{
		named("idx_posts_created__id", asc("-created_at", "-_id")),
		named("idx_posts_tags_created", asc("tags", "-created_at")),
		named("idx_posts_author", asc("author_id")),
	}},
	{"reviews", []mongo.IndexModel{
		unique("uniq_reviews_author_target", asc("author_id", "target_type", "target_id")),
		named("idx_reviews_target_created", asc("target_type", "target_id", "-created_at")),
	}},
	{"login_records", []mongo.IndexModel{
		named("idx_logins_user_created", asc("user_id", "-created_at")),
		named("idx_logins_created", asc("-created_at")),
	}},
}

// EnsureAll reconciles every collection's indexes and runs at startup.
// It is idempotent. Failures are collected so one bad collection does not
// hide the others.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string
	for _, s := range set {
		if err := Ensure(ctx, db.Collection(s.coll), s.models); err != nil {
			problems = append(problems, s.coll+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

type existing struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique bool   `bson:"unique"`
}

func signature(keys bson.D) string {
	parts := make([]string, len(keys))
	for i, kv := range keys {
		parts[i] = fmt.Sprintf("%s:%v", kv.Key, kv.Value)
	}
	return strings.Join(parts, ",")
}

// Ensure makes coll carry want. An index over the same keys under another
// name, or with different uniqueness, is dropped and rebuilt.
func Ensure(ctx context.Context, coll *mongo.Collection, want []mongo.IndexModel) error {
	have, err := listIndexes(ctx, coll)
	if err != nil {
		return err
	}

	var errs []string
	for _, m := range want {
		name, uniq := "", false
		if m.Options != nil {
			if m.Options.Name != nil {
				name = *m.Options.Name
			}
			uniq = m.Options.Unique != nil && *m.Options.Unique
		}
		sig := signature(m.Keys.(bson.D))
		log := zap.L().With(zap.String("collection", coll.Name()), zap.String("index", name), zap.String("keys", sig))
		start := time.Now()

		if ex, ok := have[sig]; ok {
			if ex.Unique == uniq && (name == "" || ex.Name == name) {
				log.Debug("index present")
				continue
			}
			log.Info("rebuilding index", zap.String("was", ex.Name), zap.Bool("unique", uniq))
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s: drop %s: %v", name, ex.Name, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if uniq && (wafflemongo.IsDup(err) || mongo.IsDuplicateKeyError(err)) {
				err = fmt.Errorf("duplicates present%s", duplicateFinder(coll.Name(), sig))
			}
			log.Warn("index create failed", zap.Error(err))
			errs = append(errs, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		log.Info("index created", zap.Duration("took", time.Since(start)))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func listIndexes(ctx context.Context, coll *mongo.Collection) (map[string]existing, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		// A collection that does not exist yet has no indexes.
		var ce mongo.CommandError
		if errors.As(err, &ce) && ce.Code == 26 {
			return map[string]existing{}, nil
		}
		return nil, err
	}
	var rows []existing
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	out := make(map[string]existing, len(rows))
	for _, r := range rows {
		out[signature(r.Key)] = r
	}
	return out, nil
}

// duplicateFinder suggests a shell query for the unique indexes legacy data
// is most likely to violate.
func duplicateFinder(coll, sig string) string {
	switch {
	case coll == "users" && sig == "email:1":
		return `; find them with db.users.aggregate([{$group:{_id:"$email",n:{$sum:1}}},{$match:{n:{$gt:1}}}])`
	case coll == "board_members":
		return `; find them with db.board_members.aggregate([{$group:{_id:{b:"$board_id",u:"$user_id"},n:{$sum:1}}},{$match:{n:{$gt:1}}}])`
	}
	return ""
}
