package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/remindhq/reminder-api/internal/database"
)

// Pinger is anything that can report reachability, such as the Redis
// rate limit store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// QueueChecker reports the health of the job queue connection
type QueueChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthChecker handles health check requests
type HealthChecker struct {
	db    *database.DB
	cache Pinger
	queue QueueChecker
}

// NewHealthChecker creates a health checker over the database only
func NewHealthChecker(db *database.DB) *HealthChecker {
	return &HealthChecker{db: db}
}

// NewHealthCheckerWithDeps creates a health checker that also probes the
// cache and job queue in extended mode. Nil dependencies are skipped.
func NewHealthCheckerWithDeps(db *database.DB, cache Pinger, queue QueueChecker) *HealthChecker {
	return &HealthChecker{db: db, cache: cache, queue: queue}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthCheck handles the /healthz endpoint
func (h *HealthChecker) HealthCheck(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("mode")

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if mode == "extended" {
		checks := make(map[string]string)

		if h.db != nil {
			if err := h.checkDatabase(r.Context()); err != nil {
				response.Status = "unhealthy"
				checks["database"] = "unhealthy: " + err.Error()
			} else {
				checks["database"] = "healthy"
			}
		} else {
			checks["database"] = "not configured"
		}

		if h.cache != nil {
			if err := h.checkWithTimeout(r.Context(), h.cache.Ping); err != nil {
				response.Status = "unhealthy"
				checks["cache"] = "unhealthy: " + err.Error()
			} else {
				checks["cache"] = "healthy"
			}
		} else {
			checks["cache"] = "not configured"
		}

		if h.queue != nil {
			if err := h.checkWithTimeout(r.Context(), h.queue.HealthCheck); err != nil {
				response.Status = "unhealthy"
				checks["queue"] = "unhealthy: " + err.Error()
			} else {
				checks["queue"] = "healthy"
			}
		} else {
			checks["queue"] = "not configured"
		}

		response.Checks = checks

		statusCode := http.StatusOK
		if response.Status == "unhealthy" {
			statusCode = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		json.NewEncoder(w).Encode(response)
		return
	}

	// Basic mode - just return that the server is running
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// checkDatabase verifies the database connection
func (h *HealthChecker) checkDatabase(ctx context.Context) error {
	return h.checkWithTimeout(ctx, h.db.PingContext)
}

func (h *HealthChecker) checkWithTimeout(ctx context.Context, probe func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return probe(ctx)
}
