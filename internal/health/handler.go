package health

import (
	"context"
	"net/http"
	"time"

	"lv-brokerage/internal/httputil"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Handler serves liveness and readiness. A nil pool means the service runs
// on the in-memory stores and is always ready.
type Handler struct {
	pool      *pgxpool.Pool
	startedAt time.Time
}

func NewHandler(pool *pgxpool.Pool, startedAt time.Time) *Handler {
	start := startedAt.UTC()
	if start.IsZero() {
		start = time.Now().UTC()
	}
	return &Handler{pool: pool, startedAt: start}
}

type liveResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	UptimeSec int64  `json:"uptime_sec"`
}

type readyResponse struct {
	Status    string      `json:"status"`
	Timestamp string      `json:"timestamp"`
	UptimeSec int64       `json:"uptime_sec"`
	Database  dbStatus `json:"database"`
}

type dbStatus struct {
	HasPool   bool   `json:"has_pool"`
	Reachable bool   `json:"reachable"`
	PingMs    int64  `json:"ping_ms"`
	Error     string `json:"error,omitempty"`
}

func (h *Handler) uptime(now time.Time) int64 {
	d := now.Sub(h.startedAt)
	if d < 0 {
		return 0
	}
	return int64(d.Seconds())
}

// Live does not check dependencies.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	httputil.WriteJSON(w, http.StatusOK, liveResponse{
		Status:    "ok",
		Timestamp: now.Format(time.RFC3339),
		UptimeSec: h.uptime(now),
	})
}

// Ready pings the database when one is configured and returns 503 when it
// is unreachable.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	db := dbStatus{HasPool: h.pool != nil}
	status, httpStatus := "ok", http.StatusOK

	if h.pool != nil {
		ctx, cancel := context.WithTimeout(r.Context(), time.Second)
		start := time.Now()
		err := h.pool.Ping(ctx)
		cancel()
		db.PingMs = time.Since(start).Milliseconds()
		if err != nil {
			db.Error = err.Error()
			status, httpStatus = "degraded", http.StatusServiceUnavailable
		} else {
			db.Reachable = true
		}
	}

	httputil.WriteJSON(w, httpStatus, readyResponse{
		Status:    status,
		Timestamp: now.Format(time.RFC3339),
		UptimeSec: h.uptime(now),
		Database:  db,
	})
}
