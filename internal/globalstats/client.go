// Package globalstats fetches the public COVID-19 aggregate shown on the dashboard.
package globalstats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"covidrisk/internal/metrics"
	"covidrisk/internal/models"
)

// UserMessage is the only failure text shown to users.
const UserMessage = "Could not load global COVID data."

const cacheKey = "globalstats:all"

// ErrInvalidData means the provider returned figures that fail validation.
var ErrInvalidData = errors.New("invalid global statistics")

// Cache is the subset of fiber.Storage used to share fetched stats.
type Cache interface {
	Get(key string) ([]byte, error)
	Set(key string, val []byte, exp time.Duration) error
}

// Client fetches global statistics.
type Client struct {
	url        string
	httpClient *http.Client
	cache      Cache
	ttl        time.Duration
}

// NewClient creates a new stats client. cache may be nil.
func NewClient(url string, timeout time.Duration, cache Cache, ttl time.Duration) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		cache: cache,
		ttl:   ttl,
	}
}

// Fetch returns the current global statistics. A fetch still in flight
// when ctx ends runs to completion, but its result is discarded and
// ctx.Err() is returned.
func (c *Client) Fetch(ctx context.Context) (*models.GlobalStats, error) {
	if stats := c.cached(); stats != nil {
		return stats, nil
	}

	start := time.Now()
	stats, err := c.fetch(context.WithoutCancel(ctx))
	metrics.ObserveGlobalStatsFetch(time.Since(start), err)

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		return nil, err
	}

	c.store(stats)
	return stats, nil
}

func (c *Client) fetch(ctx context.Context) (*models.GlobalStats, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch global stats: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch global stats: status %d", resp.StatusCode)
	}

	var stats models.GlobalStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, fmt.Errorf("failed to decode global stats: %w", err)
	}
	if !stats.Valid() {
		return nil, ErrInvalidData
	}
	return &stats, nil
}

func (c *Client) cached() *models.GlobalStats {
	if c.cache == nil || c.ttl <= 0 {
		return nil
	}
	data, err := c.cache.Get(cacheKey)
	if err != nil {
		slog.Warn("global stats cache read failed", "error", err)
		return nil
	}
	if len(data) == 0 {
		return nil
	}
	var stats models.GlobalStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil
	}
	return &stats
}

func (c *Client) store(stats *models.GlobalStats) {
	if c.cache == nil || c.ttl <= 0 {
		return
	}
	data, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := c.cache.Set(cacheKey, data, c.ttl); err != nil {
		slog.Warn("global stats cache write failed", "error", err)
	}
}
