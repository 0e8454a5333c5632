// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers the
// framework-level settings (ports, TLS, log level, env); everything planora
// needs on top of that lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// JWT session cookie
	JWTSecret    string        // HMAC key for signing tokens (>= 32 bytes in prod)
	JWTTTL       time.Duration // token lifetime
	CookieName   string
	CookieDomain string // blank means current host

	// FrontendOrigin is the SPA origin allowed by CORS and used for
	// post-login redirects.
	FrontendOrigin string
	// BaseURL is this API's public URL, used for the OAuth callback.
	BaseURL string

	// Google OAuth
	GoogleClientID     string
	GoogleClientSecret string

	// Login rate limiting: attempts per IP per window (0 disables).
	LoginRateLimit  int
	LoginRateWindow time.Duration

	// Audit logging: "all", "db", "log" or "off".
	AuditLogAuth   string
	AuditLogBoards string

	// Zero keeps the built-in default.
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
}
