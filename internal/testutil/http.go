package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/planora/internal/app/system/auth"
	"github.com/dalemusser/planora/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestUser is the identity a handler test signs in as.
type TestUser struct {
	ID      string
	Name    string
	Email   string
	Picture string
}

// RandomUser is a TestUser with a fresh id that exists in no database.
func RandomUser(name string) TestUser {
	return TestUser{
		ID:    primitive.NewObjectID().Hex(),
		Name:  name,
		Email: strings.ToLower(name) + "@test.com",
	}
}

func AsTestUser(u models.User) TestUser {
	return TestUser{ID: u.ID.Hex(), Name: u.Name, Email: u.Email, Picture: u.Picture}
}

// WithUser puts user into r's context the way auth.RequireUser would,
// without a token.
func WithUser(r *http.Request, user TestUser) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{
		ID:      user.ID,
		Name:    user.Name,
		Email:   user.Email,
		Picture: user.Picture,
	})
}

func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewJSONRequest encodes v as the request body. v may be a string, which
// is sent as-is for malformed-body tests.
func NewJSONRequest(method, target string, v any) *http.Request {
	var b []byte
	if s, ok := v.(string); ok {
		b = []byte(s)
	} else {
		b, _ = json.Marshal(v)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func NewAuthenticatedRequest(method, target string, user TestUser) *http.Request {
	return WithUser(httptest.NewRequest(method, target, nil), user)
}

// ResponseRecorder adds envelope-aware assertions to httptest's recorder.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

func (r *ResponseRecorder) AssertStatus(t testing.TB, want int) {
	t.Helper()
	assert.Equal(t, want, r.Code, "body: %s", r.Body.String())
}

func (r *ResponseRecorder) AssertContains(t testing.TB, want string) {
	t.Helper()
	assert.Contains(t, r.Body.String(), want)
}

// Envelope mirrors apiresp's response body.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// DecodeEnvelope decodes the body and, when data is non-nil, the
// envelope's data into it. Either failing stops the test.
func (r *ResponseRecorder) DecodeEnvelope(t testing.TB, data any) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(r.Body.Bytes(), &env), "body: %s", r.Body.String())
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data), "data: %s", env.Data)
	}
	return env
}
