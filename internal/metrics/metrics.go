package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"covidrisk/internal/models"
)

var (
	sessionHistoryDesc = prometheus.NewDesc(
		"covidrisk_session_predictions",
		"Predictions currently held in live session histories by risk",
		[]string{"risk"},
		nil,
	)
	activeSessionsDesc = prometheus.NewDesc(
		"covidrisk_active_sessions",
		"Number of live session workspaces",
		nil,
		nil,
	)

	submissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "covidrisk_submissions_total",
		Help: "Submission attempts by outcome.",
	}, []string{"outcome"})
	predictionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "covidrisk_predictions_total",
		Help: "Successful predictions by risk.",
	}, []string{"risk"})
	predictorDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "covidrisk_predictor_request_duration_seconds",
		Help:    "Duration of prediction backend calls.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
	})
	globalStatsFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "covidrisk_global_stats_fetches_total",
		Help: "Global statistics fetches by result.",
	}, []string{"result"})
	globalStatsDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "covidrisk_global_stats_fetch_duration_seconds",
		Help:    "Duration of global statistics fetches.",
		Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
	})
	predictorUp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "covidrisk_predictor_up",
		Help: "Whether the last backend health check succeeded (1) or not (0).",
	})
)

// HistorySource exposes live session histories to the collector.
type HistorySource interface {
	Histories() [][]models.PredictionRecord
}

// HistoryCollector is a custom Prometheus collector that reads live session
// histories on each scrape.
type HistoryCollector struct {
	source HistorySource
}

// Describe sends the metric descriptors to the channel.
func (c *HistoryCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- sessionHistoryDesc
	ch <- activeSessionsDesc
}

// Collect counts records per risk across all live sessions.
func (c *HistoryCollector) Collect(ch chan<- prometheus.Metric) {
	histories := c.source.Histories()

	counts := make(map[models.Risk]int, len(models.RiskLevels))
	for _, h := range histories {
		for _, r := range h {
			counts[r.Risk]++
		}
	}

	ch <- prometheus.MustNewConstMetric(activeSessionsDesc, prometheus.GaugeValue, float64(len(histories)))
	for _, risk := range models.RiskLevels {
		ch <- prometheus.MustNewConstMetric(
			sessionHistoryDesc,
			prometheus.GaugeValue,
			float64(counts[risk]),
			string(risk),
		)
	}
}

var initOnce sync.Once

// Init registers the history collector. Must be called once at startup.
func Init(source HistorySource) {
	initOnce.Do(func() {
		prometheus.MustRegister(&HistoryCollector{source: source})
	})
}

// RecordSubmission counts one submission attempt outcome.
func RecordSubmission(outcome string) {
	submissionsTotal.WithLabelValues(outcome).Inc()
}

// RecordPrediction counts one successful prediction.
func RecordPrediction(risk models.Risk) {
	predictionsTotal.WithLabelValues(string(risk)).Inc()
}

// ObservePredictorCall records the duration of one backend call.
func ObservePredictorCall(d time.Duration) {
	predictorDuration.Observe(d.Seconds())
}

// ObserveGlobalStatsFetch records one global statistics fetch.
func ObserveGlobalStatsFetch(d time.Duration, err error) {
	globalStatsDuration.Observe(d.Seconds())
	result := "ok"
	if err != nil {
		result = "error"
	}
	globalStatsFetches.WithLabelValues(result).Inc()
}

// SetPredictorUp records the result of a backend health check.
func SetPredictorUp(up bool) {
	if up {
		predictorUp.Set(1)
		return
	}
	predictorUp.Set(0)
}
