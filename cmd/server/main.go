package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	fiberredis "github.com/gofiber/storage/redis/v3"

	"covidrisk/internal/config"
	"covidrisk/internal/globalstats"
	"covidrisk/internal/jobs"
	"covidrisk/internal/metrics"
	"covidrisk/internal/predictor"
	"covidrisk/internal/server"
	"covidrisk/internal/sessions"
)

func main() {
	cfg := config.Load()
	setupLogger(cfg)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ui, err := config.LoadUIConfig()
	if err != nil {
		slog.Error("failed to load UI config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pc := predictor.NewClient(cfg.PredictorURL, cfg.PredictorTimeout)
	manager := sessions.NewManager(pc)
	metrics.Init(manager)

	deps := server.Deps{
		UI:        ui,
		Predictor: pc,
		Sessions:  manager,
	}

	var statsCache globalstats.Cache
	if cfg.RedisURL != "" {
		storage := fiberredis.New(fiberredis.Config{URL: cfg.RedisURL})
		defer storage.Close()

		deps.Storage = storage
		deps.Redis = storage.Conn()
		statsCache = storage
		slog.Info("using redis for sessions and global stats cache")
	} else {
		slog.Info("REDIS_URL not set; sessions are kept in memory")
	}
	deps.Stats = globalstats.NewClient(cfg.GlobalStatsURL, cfg.GlobalStatsTimeout, statsCache, cfg.GlobalStatsCacheTTL)

	srv := server.New(cfg, deps)
	if err := srv.RegisterRoutes(ctx); err != nil {
		slog.Error("failed to register routes", "error", err)
		os.Exit(1)
	}

	// Background jobs
	go jobs.NewSessionSweeper(manager, cfg.SweepInterval, cfg.SessionIdleTimeout).Start(ctx)
	go jobs.NewBackendHealthChecker(pc, cfg.HealthCheckInterval).Start(ctx)

	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}
	slog.Info("server exited")
}

func setupLogger(cfg *config.Config) {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
