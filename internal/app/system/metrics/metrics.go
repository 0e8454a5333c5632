// Package metrics exposes Prometheus HTTP metrics and the mood-board
// collaboration counters.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	boardInvitations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planora_board_invitations_total",
			Help: "Collaborator invitations by role",
		},
		[]string{"role"},
	)

	boardResponses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planora_board_invitation_responses_total",
			Help: "Invitation responses by status",
		},
		[]string{"status"},
	)

	boardRemovals = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "planora_board_collaborator_removals_total",
			Help: "Collaborator removal requests",
		},
	)

	boardMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planora_board_messages_total",
			Help: "Messages appended to mood boards by type",
		},
		[]string{"type"},
	)

	authAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planora_auth_attempts_total",
			Help: "Sign-in and registration attempts by method and outcome",
		},
		[]string{"method", "outcome"},
	)
)

// BoardInvited records an invitation with role.
func BoardInvited(role string) { boardInvitations.WithLabelValues(role).Inc() }

// BoardResponded records an invitation answer.
func BoardResponded(status string) { boardResponses.WithLabelValues(status).Inc() }

// BoardCollaboratorRemoved records a removal request.
func BoardCollaboratorRemoved() { boardRemovals.Inc() }

// BoardMessage records an appended message of msgType.
func BoardMessage(msgType string) { boardMessages.WithLabelValues(msgType).Inc() }

// AuthAttempt records a sign-in or registration. outcome is a short token
// such as "ok", "bad_credentials" or "rate_limited".
func AuthAttempt(method, outcome string) { authAttempts.WithLabelValues(method, outcome).Inc() }

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{w, http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request count, latency and in-flight requests keyed
// by the matched chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		wrapped := newResponseWriter(w)
		next.ServeHTTP(wrapped, r)

		// Route pattern keeps label cardinality bounded.
		path := "unmatched"
		if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
			if pattern := routeCtx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}

		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
