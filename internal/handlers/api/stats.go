package api

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"covidrisk/internal/globalstats"
	"covidrisk/internal/models"
)

// StatsFetcher loads the global statistics.
type StatsFetcher interface {
	Fetch(ctx context.Context) (*models.GlobalStats, error)
}

// StatsHandler exposes the global statistics via JSON API.
type StatsHandler struct {
	stats StatsFetcher
}

// NewStatsHandler creates a new API stats handler.
func NewStatsHandler(stats StatsFetcher) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// GlobalStats returns the latest worldwide totals.
func (h *StatsHandler) GlobalStats(c fiber.Ctx) error {
	stats, err := h.stats.Fetch(c.Context())
	if err != nil {
		if c.Context().Err() != nil {
			return c.SendStatus(fiber.StatusNoContent)
		}
		slog.Warn("global stats unavailable", "error", err)
		return jsonError(c, fiber.StatusBadGateway, globalstats.UserMessage)
	}
	return jsonSuccess(c, stats)
}
