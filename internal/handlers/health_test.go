package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(ctx context.Context) error { return s.err }

type stubQueueChecker struct{ err error }

func (s stubQueueChecker) HealthCheck(ctx context.Context) error { return s.err }

func TestHealthCheckBasicMode(t *testing.T) {
	t.Parallel()

	// Basic mode reports liveness without touching any dependency
	h := NewHealthChecker(nil)

	w := httptest.NewRecorder()
	h.HealthCheck(w, httptest.NewRequest("GET", "/healthz", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("status = %q, want healthy", resp.Status)
	}
	if resp.Checks != nil {
		t.Error("basic mode should not include dependency checks")
	}
}

func TestHealthCheckExtendedMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		cache      Pinger
		queue      QueueChecker
		wantStatus int
		wantCache  string
		wantQueue  string
	}{
		{
			name:       "all healthy",
			cache:      stubPinger{},
			queue:      stubQueueChecker{},
			wantStatus: http.StatusOK,
			wantCache:  "healthy",
			wantQueue:  "healthy",
		},
		{
			name:       "cache down",
			cache:      stubPinger{err: errors.New("redis: connection refused")},
			queue:      stubQueueChecker{},
			wantStatus: http.StatusServiceUnavailable,
			wantCache:  "unhealthy: redis: connection refused",
			wantQueue:  "healthy",
		},
		{
			name:       "queue down",
			cache:      stubPinger{},
			queue:      stubQueueChecker{err: errors.New("connection is closed")},
			wantStatus: http.StatusServiceUnavailable,
			wantCache:  "healthy",
			wantQueue:  "unhealthy: connection is closed",
		},
		{
			name:       "deps not configured",
			wantStatus: http.StatusOK,
			wantCache:  "not configured",
			wantQueue:  "not configured",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := NewHealthCheckerWithDeps(nil, tt.cache, tt.queue)

			w := httptest.NewRecorder()
			h.HealthCheck(w, httptest.NewRequest("GET", "/healthz?mode=extended", nil))

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}

			var resp HealthResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Checks["cache"] != tt.wantCache {
				t.Errorf("cache check = %q, want %q", resp.Checks["cache"], tt.wantCache)
			}
			if resp.Checks["queue"] != tt.wantQueue {
				t.Errorf("queue check = %q, want %q", resp.Checks["queue"], tt.wantQueue)
			}
			if resp.Checks["database"] != "not configured" {
				t.Errorf("database check = %q, want not configured", resp.Checks["database"])
			}
		})
	}
}
