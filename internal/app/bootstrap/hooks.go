// internal/app/bootstrap/hooks.go
package bootstrap

import (
	"github.com/dalemusser/waffle/app"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps is what ConnectDB hands to the later lifecycle stages.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
}

// Hooks is the planora lifecycle as run by waffle's app.Run: load and
// validate config, connect, ensure validators and indexes, start the
// background pieces, serve, then shut down.
var Hooks = app.Hooks[AppConfig, DBDeps]{
	Name:           "planora",
	LoadConfig:     LoadConfig,
	ValidateConfig: ValidateConfig,
	ConnectDB:      ConnectDB,
	EnsureSchema:   EnsureSchema,
	Startup:        Startup,
	BuildHandler:   BuildHandler,
	Shutdown:       Shutdown,
}
