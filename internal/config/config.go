package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"covidrisk/internal/validation"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr string
	BaseURL    string

	// Logging
	LogLevel  string // debug, info, warn, error
	LogFormat string // text or json

	// TLS
	TLSEnabled  bool
	TLSCertFile string
	TLSKeyFile  string

	// Prediction backend
	PredictorURL     string
	PredictorTimeout time.Duration

	// Global statistics provider
	GlobalStatsURL      string
	GlobalStatsTimeout  time.Duration
	GlobalStatsCacheTTL time.Duration

	// Redis, optional. Enables shared session storage and the stats cache.
	RedisURL string

	// Session
	SessionSecret      string // Used for encrypting cookies (min 32 chars)
	SessionIdleTimeout time.Duration

	// Background jobs
	SweepInterval       time.Duration
	HealthCheckInterval time.Duration

	// OIDC, optional. When OIDCIssuer is empty the app is open.
	OIDCIssuer       string
	OIDCClientID     string
	OIDCClientSecret string
	OIDCRedirectURL  string

	// CORS
	CORSOrigins string // Comma-separated allowed origins

	// Rate limit per IP per minute
	RateLimit int

	// Site Branding
	SiteTitle   string // env: SITE_TITLE, default: "COVID Risk Predictor"
	SiteTagline string // env: SITE_TAGLINE
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Env:                 getEnv("ENV", "development"),
		ServerAddr:          getEnv("SERVER_ADDR", ":3000"),
		BaseURL:             getEnv("BASE_URL", "http://localhost:3000"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "text"),
		TLSEnabled:          getEnv("TLS_ENABLED", "") != "",
		TLSCertFile:         getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:          getEnv("TLS_KEY_FILE", ""),
		PredictorURL:        getEnv("PREDICTOR_URL", "http://localhost:8000"),
		PredictorTimeout:    getEnvDuration("PREDICTOR_TIMEOUT", 15*time.Second),
		GlobalStatsURL:      getEnv("GLOBAL_STATS_URL", "https://disease.sh/v3/covid-19/all"),
		GlobalStatsTimeout:  getEnvDuration("GLOBAL_STATS_TIMEOUT", 10*time.Second),
		GlobalStatsCacheTTL: getEnvDuration("GLOBAL_STATS_CACHE_TTL", 5*time.Minute),
		RedisURL:            getEnv("REDIS_URL", ""),
		SessionSecret:       getEnv("SESSION_SECRET", "change-me-in-production-min-32-chars"),
		SessionIdleTimeout:  getEnvDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute),
		SweepInterval:       getEnvDuration("SESSION_SWEEP_INTERVAL", 5*time.Minute),
		HealthCheckInterval: getEnvDuration("HEALTH_CHECK_INTERVAL", time.Minute),
		OIDCIssuer:          getEnv("OIDC_ISSUER", ""),
		OIDCClientID:        getEnv("OIDC_CLIENT_ID", ""),
		OIDCClientSecret:    getEnv("OIDC_CLIENT_SECRET", ""),
		OIDCRedirectURL:     getEnv("OIDC_REDIRECT_URL", "http://localhost:3000/auth/callback"),
		CORSOrigins:         getEnv("CORS_ORIGINS", ""),
		RateLimit:           getEnvInt("RATE_LIMIT", 100),

		SiteTitle:   getEnv("SITE_TITLE", "COVID Risk Predictor"),
		SiteTagline: getEnv("SITE_TAGLINE", "Enter regional data to assess the risk level"),
	}
}

// Validate checks that all configuration values are usable.
func (c *Config) Validate() error {
	if err := validation.ValidateBaseURL(c.PredictorURL); err != nil {
		return fmt.Errorf("PREDICTOR_URL: %w", err)
	}
	if err := validation.ValidateBaseURL(c.GlobalStatsURL); err != nil {
		return fmt.Errorf("GLOBAL_STATS_URL: %w", err)
	}
	if c.PredictorTimeout <= 0 {
		return errors.New("PREDICTOR_TIMEOUT must be positive")
	}
	if c.GlobalStatsTimeout <= 0 {
		return errors.New("GLOBAL_STATS_TIMEOUT must be positive")
	}
	if c.SessionIdleTimeout < time.Minute {
		return errors.New("SESSION_IDLE_TIMEOUT must be at least 1 minute")
	}
	if c.SweepInterval <= 0 || c.HealthCheckInterval <= 0 {
		return errors.New("job intervals must be positive")
	}
	if len(c.SessionSecret) < 32 {
		return errors.New("SESSION_SECRET must be at least 32 characters")
	}
	if !c.IsDev() && c.SessionSecret == "change-me-in-production-min-32-chars" {
		return errors.New("SESSION_SECRET must be changed outside development")
	}
	if c.TLSEnabled && (c.TLSCertFile == "" || c.TLSKeyFile == "") {
		return errors.New("TLS_CERT_FILE and TLS_KEY_FILE are required when TLS is enabled")
	}
	if c.OIDCEnabled() && c.OIDCClientID == "" {
		return errors.New("OIDC_CLIENT_ID is required when OIDC_ISSUER is set")
	}
	if c.RateLimit <= 0 {
		return errors.New("RATE_LIMIT must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// OIDCEnabled returns true if login is required.
func (c *Config) OIDCEnabled() bool {
	return c.OIDCIssuer != ""
}
