package jobs

import (
	"context"
	"log/slog"
	"time"

	"covidrisk/internal/metrics"
)

// Pinger checks whether a backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// BackendHealthChecker periodically pings the prediction backend and
// records the result in the predictor_up gauge.
type BackendHealthChecker struct {
	backend  Pinger
	interval time.Duration
	timeout  time.Duration
	healthy  bool
	checked  bool
}

// NewBackendHealthChecker creates a new backend health checker.
func NewBackendHealthChecker(backend Pinger, interval time.Duration) *BackendHealthChecker {
	return &BackendHealthChecker{
		backend:  backend,
		interval: interval,
		timeout:  5 * time.Second,
	}
}

// Start begins the background health check loop.
func (h *BackendHealthChecker) Start(ctx context.Context) {
	slog.Info("backend health checker started", "interval", h.interval)

	// Run immediately on start
	h.check(ctx)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("backend health checker stopped")
			return
		case <-ticker.C:
			h.check(ctx)
		}
	}
}

// check pings the backend once. Transitions are logged, steady state is not.
func (h *BackendHealthChecker) check(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	err := h.backend.Ping(ctx)
	healthy := err == nil
	metrics.SetPredictorUp(healthy)

	if h.checked && healthy == h.healthy {
		return
	}
	h.checked = true
	h.healthy = healthy

	if healthy {
		slog.Info("prediction backend is reachable")
	} else {
		slog.Warn("prediction backend is unreachable", "error", err)
	}
}
