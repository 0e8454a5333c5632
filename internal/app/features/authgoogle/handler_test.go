package authgoogle_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/planora/internal/app/features/authgoogle"
	"github.com/dalemusser/planora/internal/app/system/auth"
	"github.com/dalemusser/planora/internal/domain/models"
	"github.com/dalemusser/planora/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const frontend = "http://localhost:5173"

func newHandler(t *testing.T, clientID string) *authgoogle.Handler {
	t.Helper()
	db := testutil.SetupTestDB(t)
	sm, err := auth.NewSessionManager(strings.Repeat("s", auth.MinSecretLen), "token", "", time.Hour, false, zap.NewNop())
	require.NoError(t, err)
	return authgoogle.NewHandler(db, sm, nil, clientID, "shh", "http://localhost:8080/", frontend, zap.NewNop())
}

// fakeProvider stands in for Google's token and userinfo endpoints and
// points h at it. The token endpoint insists on a PKCE verifier.
func fakeProvider(t *testing.T, h *authgoogle.Handler, profile map[string]any) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if r.ParseForm() != nil || r.PostForm.Get("code_verifier") == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "tok", "token_type": "Bearer", "expires_in": 3600})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(profile)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	h.Endpoint = oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"}
	h.UserInfoURL = srv.URL + "/userinfo"
}

// start runs ServeStart and returns the state sent to the provider.
func start(t *testing.T, h *authgoogle.Handler, target string) string {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeStart(rec, httptest.NewRequest(http.MethodGet, target, nil))
	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	return loc.Query().Get("state")
}

func callback(h *authgoogle.Handler, state, code string) *httptest.ResponseRecorder {
	q := url.Values{}
	if state != "" {
		q.Set("state", state)
	}
	if code != "" {
		q.Set("code", code)
	}
	rec := httptest.NewRecorder()
	h.ServeCallback(rec, httptest.NewRequest(http.MethodGet, "/callback?"+q.Encode(), nil))
	return rec
}

func sessionToken(h *authgoogle.Handler, rec *httptest.ResponseRecorder) string {
	for _, c := range rec.Result().Cookies() {
		if c.Name == h.Sessions.CookieName() {
			return c.Value
		}
	}
	return ""
}

func TestEnabled(t *testing.T) {
	assert.True(t, newHandler(t, "client").Enabled())
	assert.False(t, newHandler(t, "").Enabled())
}

func TestServeStart_NotConfigured(t *testing.T) {
	h := newHandler(t, "")
	rec := httptest.NewRecorder()
	h.ServeStart(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, frontend+"/login?error=google_not_configured", rec.Header().Get("Location"))
}

func TestServeStart_RedirectsWithPKCE(t *testing.T) {
	h := newHandler(t, "client")
	rec := httptest.NewRecorder()
	h.ServeStart(rec, httptest.NewRequest(http.MethodGet, "/?return=/trips", nil))
	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "accounts.google.com", loc.Host)
	q := loc.Query()
	assert.NotEmpty(t, q.Get("state"))
	assert.NotEmpty(t, q.Get("code_challenge"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.Equal(t, "http://localhost:8080/api/auth/google/callback", q.Get("redirect_uri"))
	assert.Contains(t, q.Get("scope"), "openid")
}

func TestServeCallback_Failures(t *testing.T) {
	h := newHandler(t, "client")
	fakeProvider(t, h, map[string]any{"id": "", "email": "x@example.com"})

	t.Run("provider error", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeCallback(rec, httptest.NewRequest(http.MethodGet, "/callback?error=access_denied", nil))
		assert.Equal(t, frontend+"/login?error=google_denied", rec.Header().Get("Location"))
	})
	t.Run("missing state", func(t *testing.T) {
		assert.Contains(t, callback(h, "", "abc").Header().Get("Location"), "error=invalid_state")
	})
	t.Run("unknown state", func(t *testing.T) {
		assert.Contains(t, callback(h, "forged", "abc").Header().Get("Location"), "error=invalid_state")
	})
	t.Run("missing code", func(t *testing.T) {
		state := start(t, h, "/")
		assert.Contains(t, callback(h, state, "").Header().Get("Location"), "error=invalid_code")
	})
	t.Run("profile without id", func(t *testing.T) {
		state := start(t, h, "/")
		rec := callback(h, state, "abc")
		assert.Contains(t, rec.Header().Get("Location"), "error=user_info")
		assert.Empty(t, sessionToken(h, rec))
	})
}

func TestServeCallback_SignsInNewUser(t *testing.T) {
	h := newHandler(t, "client")
	fakeProvider(t, h, map[string]any{
		"id":      "google-sub-1",
		"email":   "Gina@Example.com",
		"name":    "Gina",
		"picture": "https://example.com/g.png",
	})

	state := start(t, h, "/?return=/trips")
	rec := callback(h, state, "abc")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, frontend+"/trips", rec.Header().Get("Location"))

	token := sessionToken(h, rec)
	require.NotEmpty(t, token)
	uid, err := h.Sessions.Verify(token)
	require.NoError(t, err)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	u, err := h.Users.GetByEmail(ctx, "gina@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID.Hex(), uid)
	assert.Equal(t, models.AuthGoogle, u.AuthMethod)
	assert.Equal(t, "google-sub-1", u.GoogleID)

	replay := callback(h, state, "abc")
	assert.Contains(t, replay.Header().Get("Location"), "error=invalid_state")
}

func TestServeCallback_OffsiteReturnIgnored(t *testing.T) {
	h := newHandler(t, "client")
	fakeProvider(t, h, map[string]any{"id": "sub-2", "email": "hal@example.com", "name": "Hal"})

	state := start(t, h, "/?return="+url.QueryEscape("https://evil.example/steal"))
	rec := callback(h, state, "abc")
	assert.Equal(t, frontend+"/", rec.Header().Get("Location"))
}

func TestServeCallback_DisabledAccount(t *testing.T) {
	h := newHandler(t, "client")
	fakeProvider(t, h, map[string]any{"id": "sub-3", "email": "dora@example.com", "name": "Dora"})

	ctx, cancel := testutil.TestContext()
	defer cancel()
	first := callback(h, start(t, h, "/"), "abc")
	require.NotEmpty(t, sessionToken(h, first))
	u, err := h.Users.GetByEmail(ctx, "dora@example.com")
	require.NoError(t, err)
	require.NoError(t, h.Users.SetStatus(ctx, u.ID, models.UserDisabled))

	rec := callback(h, start(t, h, "/"), "abc")
	assert.Contains(t, rec.Header().Get("Location"), "error=account_disabled")
	assert.Empty(t, sessionToken(h, rec))
}
