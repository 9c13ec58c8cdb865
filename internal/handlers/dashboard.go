package handlers

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gofiber/fiber/v3"

	"covidrisk/internal/config"
	"covidrisk/internal/globalstats"
	"covidrisk/internal/models"
	"covidrisk/internal/predictions"
	"covidrisk/internal/sessions"
)

// StatsFetcher loads the global statistics.
type StatsFetcher interface {
	Fetch(ctx context.Context) (*models.GlobalStats, error)
}

// HistoryRow is one line of the prediction history table.
type HistoryRow struct {
	Number int
	Record models.PredictionRecord
	Time   string
	Ago    string
}

// DashboardHandler serves the session analytics page.
type DashboardHandler struct {
	cfg       *config.Config
	ui        *config.UIConfig
	stats     StatsFetcher
	keepAlive time.Duration
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(cfg *config.Config, ui *config.UIConfig, stats StatsFetcher) *DashboardHandler {
	return &DashboardHandler{cfg: cfg, ui: ui, stats: stats, keepAlive: 25 * time.Second}
}

// Show renders the dashboard.
func (h *DashboardHandler) Show(c fiber.Ctx) error {
	store, err := sessions.StoreFrom(c)
	if err != nil {
		return err
	}

	data := sessionPanelData(store.List())
	data["Title"] = "Dashboard"
	return c.Render("dashboard", MergeLayout(c, data, h.cfg, h.ui))
}

// History renders the session panel (stat cards, distribution, table).
// The dashboard reloads it whenever the event stream reports a change.
func (h *DashboardHandler) History(c fiber.Ctx) error {
	store, err := sessions.StoreFrom(c)
	if err != nil {
		return err
	}
	return c.Render("partials/session_panel", sessionPanelData(store.List()), "")
}

// Global renders the global statistics card. The dashboard loads it lazily.
func (h *DashboardHandler) Global(c fiber.Ctx) error {
	stats, err := h.stats.Fetch(c.Context())
	if err != nil {
		if c.Context().Err() != nil {
			return c.SendStatus(fiber.StatusNoContent)
		}
		slog.Warn("global stats unavailable", "error", err)
		return c.Render("partials/global_stats", fiber.Map{"Error": globalstats.UserMessage}, "")
	}

	return c.Render("partials/global_stats", fiber.Map{"Stats": globalstats.Overview(stats)}, "")
}

// Events streams a "history" event each time the session's history grows.
func (h *DashboardHandler) Events(c fiber.Ctx) error {
	store, err := sessions.StoreFrom(c)
	if err != nil {
		return err
	}

	notify, unsubscribe := store.Subscribe()

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	keepAlive := h.keepAlive
	return c.SendStreamWriter(func(w *bufio.Writer) {
		defer unsubscribe()

		ticker := time.NewTicker(keepAlive)
		defer ticker.Stop()

		fmt.Fprint(w, "retry: 3000\n\n")
		if err := w.Flush(); err != nil {
			return
		}

		for {
			select {
			case _, ok := <-notify:
				if !ok {
					return
				}
				fmt.Fprintf(w, "event: history\ndata: %d\n\n", store.Len())
			case <-ticker.C:
				fmt.Fprint(w, ": keep-alive\n\n")
			}
			if err := w.Flush(); err != nil {
				return
			}
		}
	})
}

func sessionPanelData(records []models.PredictionRecord) fiber.Map {
	rows := make([]HistoryRow, len(records))
	for i, r := range records {
		rows[i] = HistoryRow{
			Number: len(records) - i,
			Record: r,
			Time:   r.Timestamp.Format("15:04:05"),
			Ago:    humanize.Time(r.Timestamp),
		}
	}

	summary := predictions.Summarize(records)
	return fiber.Map{
		"Summary": summary,
		"Cards":   statCards(summary),
		"Rows":    rows,
	}
}

// StatCard is one counter at the top of the dashboard.
type StatCard struct {
	Label string
	Value int
	Class string
}

func statCards(s predictions.Summary) []StatCard {
	return []StatCard{
		{Label: "Total Predictions", Value: s.Total, Class: "total"},
		{Label: "Low Risk", Value: s.Low, Class: "low"},
		{Label: "Medium Risk", Value: s.Medium, Class: "medium"},
		{Label: "High Risk", Value: s.High, Class: "high"},
	}
}
