// Package predictor talks to the external risk classification backend.
package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"covidrisk/internal/models"
)

// maxBodySize caps how much of a backend response is read.
const maxBodySize = 1 << 20

// Client calls the prediction backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new predictor client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type predictResponse struct {
	Risk string `json:"risk"`
}

type errorResponse struct {
	Detail any `json:"detail"`
}

// Predict sends the three figures to POST /predict and returns the risk.
func (c *Client) Predict(ctx context.Context, in models.PredictionInput) (models.Risk, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("prediction request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &StatusError{Code: resp.StatusCode, Detail: parseDetail(data)}
	}

	var pr predictResponse
	if err := json.Unmarshal(data, &pr); err != nil {
		return "", ErrUnexpectedFormat
	}

	risk, ok := models.ParseRisk(pr.Risk)
	if !ok {
		return "", ErrUnexpectedFormat
	}
	return risk, nil
}

// Ping checks the backend's root route.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("predictor unreachable: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))

	if resp.StatusCode >= 500 {
		return &StatusError{Code: resp.StatusCode}
	}
	return nil
}

// parseDetail extracts a printable "detail" from an error body. FastAPI
// validation errors carry a list there, which is rendered as JSON.
func parseDetail(data []byte) string {
	var er errorResponse
	if err := json.Unmarshal(data, &er); err != nil || er.Detail == nil {
		return ""
	}
	switch d := er.Detail.(type) {
	case string:
		return d
	default:
		b, err := json.Marshal(d)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
