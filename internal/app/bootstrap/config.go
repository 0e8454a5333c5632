// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/dalemusser/planora/internal/app/system/auditlog"
	"github.com/dalemusser/planora/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys are read from config files by name, from the environment
// as PLANORA_<NAME> and from flags as --<name>.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "planora", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size"},

	{Name: "jwt_secret", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "JWT signing key (at least 32 bytes in prod)"},
	{Name: "jwt_ttl", Default: "168h", Desc: "Session token lifetime"},
	{Name: "cookie_name", Default: "planora_token", Desc: "Session cookie name"},
	{Name: "cookie_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	{Name: "frontend_origin", Default: "http://localhost:5173", Desc: "SPA origin for CORS and post-login redirects"},
	{Name: "base_url", Default: "http://localhost:8080", Desc: "Public URL of this API (OAuth callback base)"},

	// Google OAuth configuration
	{Name: "google_client_id", Default: "", Desc: "Google OAuth2 client ID"},
	{Name: "google_client_secret", Default: "", Desc: "Google OAuth2 client secret"},

	{Name: "login_rate_limit", Default: 10, Desc: "Login attempts per IP per window (0 disables)"},
	{Name: "login_rate_window", Default: "15m", Desc: "Login rate limit window"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_boards", Default: "all", Desc: "Board event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	{Name: "timeout_short", Default: "", Desc: "Single-document operation timeout (e.g. 5s)"},
	{Name: "timeout_medium", Default: "", Desc: "List/query operation timeout"},
	{Name: "timeout_long", Default: "", Desc: "Multi-collection operation timeout"},
}

// LoadConfig reads waffle's core settings and planora's own. Flags win
// over the environment, which wins over files, which win over defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "PLANORA", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		JWTSecret:    appValues.String("jwt_secret"),
		JWTTTL:       appValues.Duration("jwt_ttl", 7*24*time.Hour),
		CookieName:   appValues.String("cookie_name"),
		CookieDomain: appValues.String("cookie_domain"),

		FrontendOrigin: appValues.String("frontend_origin"),
		BaseURL:        appValues.String("base_url"),

		GoogleClientID:     appValues.String("google_client_id"),
		GoogleClientSecret: appValues.String("google_client_secret"),

		LoginRateLimit:  appValues.Int("login_rate_limit"),
		LoginRateWindow: appValues.Duration("login_rate_window", 15*time.Minute),

		AuditLogAuth:   appValues.String("audit_log_auth"),
		AuditLogBoards: appValues.String("audit_log_boards"),

		TimeoutShort:  appValues.Duration("timeout_short", 0),
		TimeoutMedium: appValues.Duration("timeout_medium", 0),
		TimeoutLong:   appValues.Duration("timeout_long", 0),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig rejects settings planora cannot start with. The JWT
// secret must be at least auth.MinSecretLen bytes in prod.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	switch {
	case appCfg.JWTSecret == "":
		return errors.New("jwt_secret is required")
	case coreCfg.Env == "prod" && len(appCfg.JWTSecret) < auth.MinSecretLen:
		return fmt.Errorf("jwt_secret must be at least %d bytes in prod", auth.MinSecretLen)
	case appCfg.JWTTTL <= 0:
		return errors.New("jwt_ttl must be positive")
	case appCfg.LoginRateLimit < 0:
		return errors.New("login_rate_limit must not be negative")
	}
	for key, origin := range map[string]string{"frontend_origin": appCfg.FrontendOrigin, "base_url": appCfg.BaseURL} {
		u, err := url.Parse(origin)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%s must be an absolute http(s) URL, got %q", key, origin)
		}
	}
	for key, mode := range map[string]string{"audit_log_auth": appCfg.AuditLogAuth, "audit_log_boards": appCfg.AuditLogBoards} {
		if _, err := auditlog.ParseMode(mode); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}
