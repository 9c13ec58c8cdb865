package predictions

import (
	"math"
	"testing"

	"covidrisk/internal/models"
)

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	if s.Total != 0 || s.Low != 0 || s.Medium != 0 || s.High != 0 {
		t.Errorf("unexpected counts: %+v", s)
	}
	if len(s.Distribution) != 0 {
		t.Errorf("Distribution = %+v, want empty", s.Distribution)
	}
	if s.Means != nil {
		t.Errorf("Means = %+v, want nil", s.Means)
	}
}

func TestSummarize_Counts(t *testing.T) {
	records := []models.PredictionRecord{
		{ID: 4, Risk: models.RiskHigh, CasesPer100k: 900, MedianAge: 45, Aged65Above: 20},
		{ID: 3, Risk: models.RiskLow, CasesPer100k: 100, MedianAge: 25, Aged65Above: 5},
		{ID: 2, Risk: models.RiskLow, CasesPer100k: 200, MedianAge: 30, Aged65Above: 8},
		{ID: 1, Risk: models.RiskHigh, CasesPer100k: 800, MedianAge: 40, Aged65Above: 19},
	}

	s := Summarize(records)
	if s.Total != 4 || s.Low != 2 || s.Medium != 0 || s.High != 2 {
		t.Fatalf("counts = %+v", s)
	}

	if len(s.Distribution) != 2 {
		t.Fatalf("Distribution has %d slices, want 2 (empty Medium omitted)", len(s.Distribution))
	}
	if s.Distribution[0].Risk != models.RiskLow || s.Distribution[1].Risk != models.RiskHigh {
		t.Errorf("slice order = %v, %v", s.Distribution[0].Risk, s.Distribution[1].Risk)
	}
	if s.Distribution[0].Percent != 50 || s.Distribution[1].Offset != 50 {
		t.Errorf("percentages wrong: %+v", s.Distribution)
	}

	if s.Means == nil {
		t.Fatal("expected means")
	}
	if math.Abs(s.Means.CasesPer100k-500) > 1e-9 || math.Abs(s.Means.MedianAge-35) > 1e-9 || math.Abs(s.Means.Aged65Above-13) > 1e-9 {
		t.Errorf("Means = %+v", s.Means)
	}
	if s.Count(models.RiskHigh) != 2 || s.Count("Unknown") != 0 {
		t.Error("Count() mismatch")
	}
}
