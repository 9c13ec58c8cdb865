package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"covidrisk/internal/models"
)

type staticSource [][]models.PredictionRecord

func (s staticSource) Histories() [][]models.PredictionRecord { return s }

func TestHistoryCollector(t *testing.T) {
	source := staticSource{
		{{ID: 3, Risk: models.RiskHigh}, {ID: 1, Risk: models.RiskLow}},
		{{ID: 2, Risk: models.RiskHigh}},
	}

	reg := prometheus.NewPedanticRegistry()
	reg.MustRegister(&HistoryCollector{source: source})

	expected := `
# HELP covidrisk_active_sessions Number of live session workspaces
# TYPE covidrisk_active_sessions gauge
covidrisk_active_sessions 2
# HELP covidrisk_session_predictions Predictions currently held in live session histories by risk
# TYPE covidrisk_session_predictions gauge
covidrisk_session_predictions{risk="High"} 2
covidrisk_session_predictions{risk="Low"} 1
covidrisk_session_predictions{risk="Medium"} 0
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected)); err != nil {
		t.Error(err)
	}
}

func TestRecordSubmission(t *testing.T) {
	before := testutil.ToFloat64(submissionsTotal.WithLabelValues("succeeded"))
	RecordSubmission("succeeded")
	after := testutil.ToFloat64(submissionsTotal.WithLabelValues("succeeded"))
	if after-before != 1 {
		t.Errorf("counter moved by %v, want 1", after-before)
	}
}

func TestSetPredictorUp(t *testing.T) {
	SetPredictorUp(true)
	if got := testutil.ToFloat64(predictorUp); got != 1 {
		t.Errorf("predictor_up = %v, want 1", got)
	}
	SetPredictorUp(false)
	if got := testutil.ToFloat64(predictorUp); got != 0 {
		t.Errorf("predictor_up = %v, want 0", got)
	}
}
