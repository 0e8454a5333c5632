// Package apiresp writes the JSON envelope every API endpoint returns:
//
//	{ "success": bool, "message"?: string, "data"?: any, "error"?: string }
package apiresp

import (
	"encoding/json"
	"net/http"
	"sync/atomic"

	"github.com/dalemusser/planora/internal/app/system/apperr"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Envelope is the response body shape.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

var exposeInternal atomic.Bool

// ExposeInternalErrors controls whether Internal error causes are sent to
// clients. Enable only in dev.
func ExposeInternalErrors(on bool) { exposeInternal.Store(on) }

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes a 200 success envelope.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes a 201 success envelope.
func Created(w http.ResponseWriter, msg string, data any) {
	JSON(w, http.StatusCreated, Envelope{Success: true, Message: msg, Data: data})
}

// OKMessage writes a 200 success envelope with a message and data.
func OKMessage(w http.ResponseWriter, msg string, data any) {
	JSON(w, http.StatusOK, Envelope{Success: true, Message: msg, Data: data})
}

// Message writes a success envelope with only a message.
func Message(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusOK, Envelope{Success: true, Message: msg})
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.Forbidden:
		return http.StatusForbidden
	case apperr.Conflict:
		return http.StatusConflict
	case apperr.Validation:
		return http.StatusBadRequest
	case apperr.Unauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Error translates err into a failure envelope. Internal errors are logged
// at Error level with op; their detail only leaves the process when
// ExposeInternalErrors is on.
func Error(w http.ResponseWriter, log *zap.Logger, op string, err error) {
	kind := apperr.KindOf(err)
	msg := apperr.MessageOf(err)

	env := Envelope{Success: false, Message: msg, Error: kind.String()}
	if kind == apperr.Internal {
		if log != nil {
			log.Error(op+" failed", zap.Error(err))
		}
		if msg == "" {
			env.Message = "Server error"
		}
		if exposeInternal.Load() {
			env.Error = err.Error()
		}
	}
	JSON(w, StatusFor(kind), env)
}

// Fail writes a failure envelope for kind with msg.
func Fail(w http.ResponseWriter, kind apperr.Kind, msg string) {
	JSON(w, StatusFor(kind), Envelope{Success: false, Message: msg, Error: kind.String()})
}

// Recoverer turns a handler panic into a logged 500 failure envelope.
// http.ErrAbortHandler is re-raised so the server can drop the connection.
func Recoverer(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error("panic recovered",
					zap.Any("panic", rec),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.Stack("stack"),
				)
				Fail(w, apperr.Internal, "Server error")
			}()
			next.ServeHTTP(w, r)
		})
	}
}
