// Package testutil provides test utilities and helpers.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"covidrisk/internal/models"
)

// Backend is a fake prediction backend that also serves global statistics
// at /stats.
type Backend struct {
	*httptest.Server

	mu          sync.Mutex
	risk        string
	status      int
	detail      string
	statsStatus int
	stats       models.GlobalStats
	requests    []models.PredictionInput
}

// NewBackend starts a fake backend that answers every prediction with risk.
// It is closed when the test ends.
func NewBackend(t *testing.T, risk models.Risk) *Backend {
	t.Helper()

	b := &Backend{
		risk:        string(risk),
		status:      http.StatusOK,
		statsStatus: http.StatusOK,
		stats: models.GlobalStats{
			Cases:             704753890,
			Deaths:            7010681,
			Recovered:         675619811,
			Active:            22123398,
			AffectedCountries: 231,
		},
	}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Close)
	return b
}

// Fail makes /predict and / answer with status. A non-empty detail is sent
// in the FastAPI error shape.
func (b *Backend) Fail(status int, detail string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = status
	b.detail = detail
}

// FailStats makes /stats answer with status.
func (b *Backend) FailStats(status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.statsStatus = status
}

// Requests returns the prediction inputs received so far.
func (b *Backend) Requests() []models.PredictionInput {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.PredictionInput(nil), b.requests...)
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	switch r.URL.Path {
	case "/":
		if b.status != http.StatusOK {
			w.WriteHeader(b.status)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"message": "COVID Risk Predictor API is running"})

	case "/predict":
		var in models.PredictionInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			w.WriteHeader(http.StatusUnprocessableEntity)
			json.NewEncoder(w).Encode(map[string]string{"detail": "invalid body"})
			return
		}
		b.requests = append(b.requests, in)

		if b.status != http.StatusOK {
			w.WriteHeader(b.status)
			if b.detail != "" {
				json.NewEncoder(w).Encode(map[string]string{"detail": b.detail})
			}
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"prediction": 1, "risk": b.risk})

	case "/stats":
		if b.statsStatus != http.StatusOK {
			w.WriteHeader(b.statsStatus)
			return
		}
		json.NewEncoder(w).Encode(b.stats)

	default:
		http.NotFound(w, r)
	}
}
