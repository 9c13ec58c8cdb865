package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
)

// Pinger checks an upstream dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ProbeHandler handles Kubernetes health probe endpoints.
type ProbeHandler struct {
	predictor Pinger
	redis     redis.UniversalClient // nil when sessions live in memory
}

// NewProbeHandler creates a new probe handler.
func NewProbeHandler(predictor Pinger, rdb redis.UniversalClient) *ProbeHandler {
	return &ProbeHandler{predictor: predictor, redis: rdb}
}

// Liveness handles the /healthz endpoint for Kubernetes liveness probes.
// Returns 200 OK if the application is running.
func (h *ProbeHandler) Liveness(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
	})
}

// Readiness handles the /readyz endpoint for Kubernetes readiness probes.
// Returns 200 OK if the prediction backend and, when configured, redis are reachable.
func (h *ProbeHandler) Readiness(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
	defer cancel()

	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "error",
				"error":  "session storage unavailable",
			})
		}
	}

	if err := h.predictor.Ping(ctx); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "error",
			"error":  "prediction backend unavailable",
		})
	}

	return c.JSON(fiber.Map{
		"status": "ok",
	})
}
