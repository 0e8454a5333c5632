package apiresp_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/planora/internal/app/system/apiresp"
	"github.com/dalemusser/planora/internal/app/system/apperr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) apiresp.Envelope {
	t.Helper()
	var env apiresp.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid JSON body %q: %v", rec.Body.String(), err)
	}
	return env
}

func TestError_StatusMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{apperr.E(apperr.NotFound, "Mood board not found"), http.StatusNotFound},
		{apperr.E(apperr.Forbidden, "Not authorized"), http.StatusForbidden},
		{apperr.E(apperr.Conflict, "already a collaborator"), http.StatusConflict},
		{apperr.E(apperr.Validation, "bad input"), http.StatusBadRequest},
		{apperr.E(apperr.Unauthorized, "sign in"), http.StatusUnauthorized},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		apiresp.Error(rec, zap.NewNop(), "test", tt.err)
		if rec.Code != tt.status {
			t.Errorf("Error(%v): status = %d, want %d", tt.err, rec.Code, tt.status)
		}
		env := decode(t, rec)
		if env.Success {
			t.Errorf("Error(%v): success = true, want false", tt.err)
		}
		if env.Message == "" {
			t.Errorf("Error(%v): expected a message", tt.err)
		}
	}
}

func TestError_HidesInternalDetail(t *testing.T) {
	apiresp.ExposeInternalErrors(false)
	rec := httptest.NewRecorder()
	apiresp.Error(rec, zap.NewNop(), "test", errors.New("connection refused to 10.0.0.5"))

	env := decode(t, rec)
	if env.Error != "internal" {
		t.Errorf("error = %q, want %q", env.Error, "internal")
	}
	if env.Message != "Server error" {
		t.Errorf("message = %q, want %q", env.Message, "Server error")
	}
}

func TestError_ExposesInternalDetailInDev(t *testing.T) {
	apiresp.ExposeInternalErrors(true)
	defer apiresp.ExposeInternalErrors(false)

	rec := httptest.NewRecorder()
	apiresp.Error(rec, zap.NewNop(), "test", errors.New("connection refused"))
	if env := decode(t, rec); env.Error != "connection refused" {
		t.Errorf("error = %q, want %q", env.Error, "connection refused")
	}
}

func TestOK(t *testing.T) {
	rec := httptest.NewRecorder()
	apiresp.OK(rec, map[string]int{"n": 1})

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("content-type = %q", ct)
	}
	if env := decode(t, rec); !env.Success || env.Data == nil {
		t.Errorf("unexpected envelope %+v", env)
	}
}

func TestRecoverer_PanicBecomesEnvelope(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	h := apiresp.Recoverer(zap.New(core))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("nil board")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/moodboards/x", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if env := decode(t, rec); env.Success || env.Error != "internal" || env.Message != "Server error" {
		t.Errorf("unexpected envelope %+v", env)
	}
	if n := logs.FilterMessage("panic recovered").Len(); n != 1 {
		t.Errorf("logged %d panics, want 1", n)
	}
}

func TestRecoverer_PassesThrough(t *testing.T) {
	h := apiresp.Recoverer(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		apiresp.Message(w, "fine")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if env := decode(t, rec); !env.Success || env.Message != "fine" {
		t.Errorf("unexpected envelope %+v", env)
	}
}

func TestRecoverer_ReraisesAbort(t *testing.T) {
	h := apiresp.Recoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	defer func() {
		if rec := recover(); rec != http.ErrAbortHandler {
			t.Errorf("recovered %v, want http.ErrAbortHandler", rec)
		}
	}()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}
