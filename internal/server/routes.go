package server

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"covidrisk/internal/handlers"
	"covidrisk/internal/handlers/api"
	"covidrisk/internal/middleware"
)

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(ctx context.Context) error {
	authMiddleware := middleware.NewAuthMiddleware(s.Cfg.OIDCEnabled())

	predictorHandler := handlers.NewPredictorHandler(s.Cfg, s.Deps.UI)
	dashboardHandler := handlers.NewDashboardHandler(s.Cfg, s.Deps.UI, s.Deps.Stats)
	probeHandler := handlers.NewProbeHandler(s.Deps.Predictor, s.Deps.Redis)
	apiPredictions := api.NewPredictionHandler()
	apiStats := api.NewStatsHandler(s.Deps.Stats)

	// Probes and metrics
	s.App.Get("/healthz", probeHandler.Liveness)
	s.App.Get("/readyz", probeHandler.Readiness)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Auth routes, only when OIDC is configured
	if s.Cfg.OIDCEnabled() {
		authHandler, err := handlers.NewAuthHandler(ctx, s.Cfg, s.Deps.Sessions)
		if err != nil {
			return err
		}
		s.App.Get("/auth/login", authHandler.Login)
		s.App.Get("/auth/callback", authHandler.Callback)
		s.App.Get("/auth/logout", authHandler.Logout)
	} else {
		slog.Info("OIDC authentication is disabled; set OIDC_ISSUER to enable")
	}

	// Predictor page
	s.App.Get("/", authMiddleware.RequireAuth, predictorHandler.Index)
	s.App.Post("/predict", authMiddleware.RequireAuth, predictorHandler.Submit)
	s.App.Post("/predict/field", authMiddleware.RequireAuth, predictorHandler.Edit)

	// Dashboard
	s.App.Get("/dashboard", authMiddleware.RequireAuth, dashboardHandler.Show)
	s.App.Get("/dashboard/global", authMiddleware.RequireAuth, dashboardHandler.Global)
	s.App.Get("/dashboard/history", authMiddleware.RequireAuth, dashboardHandler.History)
	s.App.Get("/dashboard/events", authMiddleware.RequireAuth, dashboardHandler.Events)

	// JSON API
	apiGroup := s.App.Group("/api", authMiddleware.RequireAuth)
	apiGroup.Get("/predictions", apiPredictions.List)
	apiGroup.Post("/predictions", apiPredictions.Create)
	apiGroup.Get("/summary", apiPredictions.Summary)
	apiGroup.Get("/global-stats", apiStats.GlobalStats)

	return nil
}
