package testutil

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/planora/internal/app/store/audit"
	"github.com/dalemusser/planora/internal/app/store/oauthstate"
	"github.com/dalemusser/planora/internal/app/system/indexes"
	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// EnvMongoURI points tests at an existing server instead of a container.
const EnvMongoURI = "PLANORA_TEST_MONGO_URI"

const mongoImage = "mongo:7"

var (
	clientOnce sync.Once
	client     *mongo.Client
	clientErr  error
)

// sharedClient connects once per test binary. The container (if one is
// started) lives until the process exits.
func sharedClient() (*mongo.Client, error) {
	clientOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		uri := strings.TrimSpace(os.Getenv(EnvMongoURI))
		if uri == "" {
			c, err := mongodb.Run(ctx, mongoImage)
			if err != nil {
				clientErr = err
				return
			}
			uri, err = c.ConnectionString(ctx)
			if err != nil {
				clientErr = err
				return
			}
		}

		cl, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
		if err != nil {
			clientErr = err
			return
		}
		if err := cl.Ping(ctx, readpref.Primary()); err != nil {
			clientErr = err
			return
		}
		client = cl
	})
	return client, clientErr
}

// SetupTestDB returns a fresh database with all indexes in place. The
// database is dropped when the test finishes. The test is skipped when no
// MongoDB is reachable.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	cl, err := sharedClient()
	if err != nil {
		t.Skipf("mongo unavailable (set %s or run docker): %v", EnvMongoURI, err)
	}

	name := "planora_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	db := cl.Database(name)

	ctx, cancel := TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}
	if err := audit.New(db).EnsureIndexes(ctx); err != nil {
		t.Fatalf("audit indexes: %v", err)
	}
	if err := oauthstate.New(db).EnsureIndexes(ctx); err != nil {
		t.Fatalf("oauthstate indexes: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
	})
	return db
}

// TestClient returns the shared client, skipping the test when MongoDB is
// unreachable.
func TestClient(t *testing.T) *mongo.Client {
	t.Helper()
	cl, err := sharedClient()
	if err != nil {
		t.Skipf("mongo unavailable: %v", err)
	}
	return cl
}

// TestContext returns a context with a timeout suitable for one test's
// database work.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}
