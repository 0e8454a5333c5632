package bootstrap

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/planora/internal/testutil"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func validAppConfig() AppConfig {
	return AppConfig{
		MongoURI:        "mongodb://localhost:27017",
		MongoDatabase:   "planora",
		JWTSecret:       strings.Repeat("k", 40),
		JWTTTL:          time.Hour,
		CookieName:      "planora_token",
		FrontendOrigin:  "http://localhost:5173",
		BaseURL:         "http://localhost:8080",
		LoginRateLimit:  10,
		LoginRateWindow: time.Minute,
		AuditLogAuth:    "off",
		AuditLogBoards:  "off",
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{"valid", "prod", func(*AppConfig) {}, false},
		{"bad mongo uri", "dev", func(c *AppConfig) { c.MongoURI = "postgres://nope" }, true},
		{"empty secret", "dev", func(c *AppConfig) { c.JWTSecret = "" }, true},
		{"short secret in prod", "prod", func(c *AppConfig) { c.JWTSecret = "short" }, true},
		{"short secret in dev", "dev", func(c *AppConfig) { c.JWTSecret = "short" }, false},
		{"zero ttl", "dev", func(c *AppConfig) { c.JWTTTL = 0 }, true},
		{"negative rate limit", "dev", func(c *AppConfig) { c.LoginRateLimit = -1 }, true},
		{"relative frontend origin", "dev", func(c *AppConfig) { c.FrontendOrigin = "localhost:5173" }, true},
		{"ftp base url", "dev", func(c *AppConfig) { c.BaseURL = "ftp://api.example.com" }, true},
		{"unknown audit mode", "dev", func(c *AppConfig) { c.AuditLogBoards = "syslog" }, true},
		{"blank audit mode", "dev", func(c *AppConfig) { c.AuditLogAuth = "" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validAppConfig()
			tt.mutate(&cfg)
			err := ValidateConfig(&config.CoreConfig{Env: tt.env}, cfg, testLogger())
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEnsureSchema_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoClient: db.Client(), MongoDatabase: db}
	core := &config.CoreConfig{Env: "test"}
	for i := 0; i < 2; i++ {
		if err := EnsureSchema(ctx, core, validAppConfig(), deps, testLogger()); err != nil {
			t.Fatalf("EnsureSchema run %d failed: %v", i+1, err)
		}
	}

	// Validators are attached: an invalid booking is rejected.
	_, err := db.Collection("bookings").InsertOne(ctx, bson.M{"type": "boat"})
	if err == nil {
		t.Error("expected schema validation error for invalid booking")
	}
}

func newServer(t *testing.T) http.Handler {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoClient: db.Client(), MongoDatabase: db}
	core := &config.CoreConfig{Env: "test"}
	cfg := validAppConfig()

	if err := Startup(ctx, core, cfg, deps, testLogger()); err != nil {
		t.Fatalf("Startup failed: %v", err)
	}
	t.Cleanup(func() {
		rt.stateCleanup.Stop()
		rt.limiter.Close()
		rt = runtime{}
	})

	h, err := BuildHandler(core, cfg, deps, testLogger())
	if err != nil {
		t.Fatalf("BuildHandler failed: %v", err)
	}
	return h
}

func TestBuildHandler_Routes(t *testing.T) {
	h := newServer(t)

	tests := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/api/posts", http.StatusOK},
		{http.MethodGet, "/api/moodboards/public", http.StatusOK},
		{http.MethodGet, "/api/trips", http.StatusUnauthorized},
		{http.MethodGet, "/api/auth/me", http.StatusUnauthorized},
		{http.MethodGet, "/api/nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("status: got %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestBuildHandler_RegisterThenMe(t *testing.T) {
	h := newServer(t)

	body, _ := json.Marshal(map[string]string{
		"name": "Alice", "email": "alice@example.com", "password": "long enough secret",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: got %d, want %d (body %s)", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var session *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "planora_token" {
			session = c
		}
	}
	if session == nil {
		t.Fatal("register did not set the session cookie")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(session)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("me: got %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "alice@example.com") {
		t.Errorf("me: body %s does not contain the email", rec.Body.String())
	}
}

func TestBuildHandler_CORSPreflight(t *testing.T) {
	h := newServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/trips", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Allow-Origin: got %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Allow-Credentials: got %q", got)
	}
}
