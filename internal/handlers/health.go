package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"
)

const healthPingTimeout = 2 * time.Second

// HealthResponse reports service and database status.
type HealthResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Database string `json:"database"`
}

// HealthHandler answers liveness probes for the API and its database.
type HealthHandler struct {
	db *sql.DB
}

// NewHealthHandler constructs a handler over the shared connection pool.
func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health reports 200 while the database answers a ping, 503 otherwise.
// It is mounted without authentication so probes can reach it.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:   "degraded",
			Message:  "fishing log api is running",
			Database: "unreachable",
		})
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:   "ok",
		Message:  "fishing log api is running",
		Database: "ok",
	})
}
