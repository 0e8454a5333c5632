// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/dalemusser/planora/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// collections lists every collection planora writes, with its JSON-Schema
// validator. A nil schema means the collection is only created, which
// multi-document transactions need before they touch it.
var collections = []struct {
	name   string
	schema bson.M
}{
	{"users", object(
		[]string{"name", "email", "status", "auth_method"},
		bson.M{
			"name":        nonBlank,
			"name_ci":     bson.M{"bsonType": "string"},
			"email":       nonBlank,
			"status":      enum(models.UserActive, models.UserDisabled),
			"auth_method": enum(models.AuthPassword, models.AuthGoogle),
		})},
	{"moodboards", object(
		[]string{"owner_id", "title", "is_public", "version"},
		bson.M{
			"owner_id":    objectID,
			"title":       nonBlank,
			"is_public":   bson.M{"bsonType": "bool"},
			"version":     bson.M{"bsonType": integer, "minimum": 1},
			"message_seq": bson.M{"bsonType": integer, "minimum": 0},
		})},
	{"board_members", object(
		[]string{"board_id", "user_id", "role", "status"},
		bson.M{
			"board_id": objectID,
			"user_id":  objectID,
			"role":     enum(models.RoleOwner, models.RoleEditor, models.RoleViewer),
			"status":   enum(models.StatusPending, models.StatusAccepted, models.StatusDeclined),
		})},
	{"board_messages", object(
		[]string{"board_id", "seq", "text", "type", "created_at"},
		bson.M{
			"board_id":   objectID,
			"seq":        bson.M{"bsonType": integer, "minimum": 1},
			"text":       nonBlank,
			"type":       enum(models.MessageText, models.MessageSystem),
			"created_at": date,
		})},
	{"trips", object(
		[]string{"user_id", "title", "destination"},
		bson.M{
			"user_id":     objectID,
			"title":       nonBlank,
			"destination": nonBlank,
			"budget":      bson.M{"bsonType": number, "minimum": 0},
			"travelers":   bson.M{"bsonType": integer, "minimum": 1},
		})},
	{"bookings", object(
		[]string{"user_id", "type", "provider", "check_in", "currency", "status"},
		bson.M{
			"user_id":     objectID,
			"trip_id":     objectID,
			"type":        enum(models.BookingTypes...),
			"provider":    nonBlank,
			"check_in":    date,
			"currency":    bson.M{"bsonType": "string", "pattern": "^[A-Z]{3}$"},
			"status":      enum(models.BookingConfirmed, models.BookingCancelled),
			"total_price": bson.M{"bsonType": number, "minimum": 0},
		})},
	{"saved_places", object(
		[]string{"user_id", "place_id", "name"},
		bson.M{
			"user_id":  objectID,
			"place_id": nonBlank,
			"name":     nonBlank,
			"lat":      bson.M{"bsonType": number, "minimum": -90, "maximum": 90},
			"lng":      bson.M{"bsonType": number, "minimum": -180, "maximum": 180},
		})},
	{"reviews", object(
		[]string{"author_id", "target_type", "target_id", "rating"},
		bson.M{
			"author_id":   objectID,
			"target_type": enum(models.ReviewTargetTypes...),
			"target_id":   nonBlank,
			"rating":      bson.M{"bsonType": integer, "minimum": 1, "maximum": 5},
		})},
	{"posts", nil},
	{"login_records", nil},
	{"audit_events", nil},
	{"oauth_states", nil},
}

var (
	nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}
	objectID = bson.M{"bsonType": "objectId"}
	date     = bson.M{"bsonType": "date"}
	integer  = bson.A{"int", "long"}
	number   = bson.A{"int", "long", "double", "decimal"}
)

func object(required []string, props bson.M) bson.M {
	req := make(bson.A, len(required))
	for i, r := range required {
		req[i] = r
	}
	return bson.M{"$jsonSchema": bson.M{
		"bsonType":   "object",
		"required":   req,
		"properties": props,
	}}
}

func enum(vals ...string) bson.M {
	a := make(bson.A, len(vals))
	for i, v := range vals {
		a[i] = v
	}
	return bson.M{"enum": a}
}

// EnsureAll creates any missing collection and attaches its validator with
// validationLevel "moderate", so documents written before a schema change
// are not rejected on unrelated updates. Servers without collMod support
// (some DocumentDB versions) are logged and skipped.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	existing, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		// Fall back to create-and-tolerate for every collection.
		zap.L().Warn("listCollections failed", zap.Error(err))
		existing = nil
	}

	var problems []string
	for _, c := range collections {
		log := zap.L().With(zap.String("collection", c.name))
		if !slices.Contains(existing, c.name) {
			switch err := db.CreateCollection(ctx, c.name); {
			case err == nil:
				log.Info("created collection")
			case hasCode(err, codeNamespaceExists):
			default:
				log.Warn("createCollection failed", zap.Error(err))
				problems = append(problems, c.name+": "+err.Error())
				continue
			}
		}
		if c.schema == nil {
			continue
		}
		if err := collMod(ctx, db, c.name, c.schema); err != nil {
			if hasCode(err, codeCommandNotFound, codeNotImplemented) {
				log.Info("validator skipped (unsupported)")
				continue
			}
			problems = append(problems, c.name+": "+err.Error())
			continue
		}
		log.Debug("validator ensured")
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func collMod(ctx context.Context, db *mongo.Database, name string, schema bson.M) error {
	return db.RunCommand(ctx, bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: schema},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}).Err()
}

const (
	codeNamespaceExists = 48
	codeCommandNotFound = 59
	codeNotImplemented  = 115
)

// hasCode matches server error codes, with a message fallback for
// compatible servers that report these conditions without the usual code.
func hasCode(err error, codes ...int32) bool {
	var ce mongo.CommandError
	if errors.As(err, &ce) && slices.Contains(codes, ce.Code) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, c := range codes {
		for _, frag := range codeMessages[c] {
			if strings.Contains(msg, frag) {
				return true
			}
		}
	}
	return false
}

var codeMessages = map[int32][]string{
	codeNamespaceExists: {"already exists", "namespace exists"},
	codeCommandNotFound: {"no such command"},
	codeNotImplemented:  {"not implemented", "not supported"},
}
