package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/planora/internal/app/features/health"
	"github.com/dalemusser/planora/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

type downDB struct{}

func (downDB) Ping(context.Context, *readpref.ReadPref) error { return errors.New("no reachable servers") }

func serve(h *health.Handler, method string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	health.Routes(h).ServeHTTP(rec, httptest.NewRequest(method, "/", nil))
	return rec
}

func TestServe_Connected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	rec := serve(health.NewHandler(db.Client(), zap.NewNop()), http.MethodGet)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "connected", body["database"])
	assert.Contains(t, body, "uptime")
}

func TestServe_Unavailable(t *testing.T) {
	rec := serve(health.NewHandler(downDB{}, zap.NewNop()), http.MethodGet)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unavailable", body["status"])
	assert.NotContains(t, body, "uptime")
}

func TestServe_HeadHasNoBody(t *testing.T) {
	rec := serve(health.NewHandler(downDB{}, zap.NewNop()), http.MethodHead)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Zero(t, rec.Body.Len())
}
