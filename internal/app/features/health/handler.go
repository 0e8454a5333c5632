package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dalemusser/planora/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Pinger is satisfied by *mongo.Client.
type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

type Handler struct {
	DB      Pinger
	Started time.Time
	Log     *zap.Logger
}

func NewHandler(db Pinger, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Started: time.Now(), Log: logger}
}

type report struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	LatencyMS int64  `json:"latency_ms"`
	Uptime    string `json:"uptime,omitempty"`
}

// Serve answers GET and HEAD /health. It is 200 with status "ok" when the
// primary answers a ping within timeouts.Ping(), otherwise 503 with status
// "unavailable". Responses are never cached.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	start := time.Now()
	err := h.DB.Ping(ctx, readpref.Primary())
	rep := report{LatencyMS: time.Since(start).Milliseconds()}

	code := http.StatusOK
	if err != nil {
		h.Log.Warn("health: mongo ping failed", zap.Error(err), zap.Int64("latency_ms", rep.LatencyMS))
		code = http.StatusServiceUnavailable
		rep.Status, rep.Database = "unavailable", "unreachable"
	} else {
		rep.Status, rep.Database = "ok", "connected"
		rep.Uptime = time.Since(h.Started).Truncate(time.Second).String()
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	if r.Method == http.MethodHead {
		return
	}
	_ = json.NewEncoder(w).Encode(rep)
}
