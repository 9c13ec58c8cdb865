package predictions

import (
	"gonum.org/v1/gonum/stat"

	"covidrisk/internal/models"
)

// Slice is one non-empty segment of the risk distribution.
type Slice struct {
	Risk    models.Risk `json:"risk"`
	Count   int         `json:"count"`
	Percent float64     `json:"percent"`
	Offset  float64     `json:"offset"` // cumulative percent before this slice
}

// Means holds the average of each input across a history.
type Means struct {
	CasesPer100k float64 `json:"cases_per_100k"`
	MedianAge    float64 `json:"median_age"`
	Aged65Above  float64 `json:"aged_65_above"`
}

// Summary is the aggregate view shown on the dashboard.
type Summary struct {
	Total        int     `json:"total"`
	Low          int     `json:"low"`
	Medium       int     `json:"medium"`
	High         int     `json:"high"`
	Distribution []Slice `json:"distribution"`
	Means        *Means  `json:"means,omitempty"`
}

// Count returns the number of records with the given risk.
func (s Summary) Count(r models.Risk) int {
	switch r {
	case models.RiskLow:
		return s.Low
	case models.RiskMedium:
		return s.Medium
	case models.RiskHigh:
		return s.High
	}
	return 0
}

// Summarize aggregates a history. Distribution contains only non-empty
// slices, in Low, Medium, High order.
func Summarize(records []models.PredictionRecord) Summary {
	s := Summary{Total: len(records), Distribution: []Slice{}}
	if len(records) == 0 {
		return s
	}

	cases := make([]float64, len(records))
	ages := make([]float64, len(records))
	aged := make([]float64, len(records))
	for i, r := range records {
		switch r.Risk {
		case models.RiskLow:
			s.Low++
		case models.RiskMedium:
			s.Medium++
		case models.RiskHigh:
			s.High++
		}
		in := r.Input()
		cases[i] = in.CasesPer100k
		ages[i] = in.MedianAge
		aged[i] = in.Aged65Above
	}

	var offset float64
	for _, risk := range models.RiskLevels {
		n := s.Count(risk)
		if n == 0 {
			continue
		}
		pct := float64(n) / float64(s.Total) * 100
		s.Distribution = append(s.Distribution, Slice{Risk: risk, Count: n, Percent: pct, Offset: offset})
		offset += pct
	}

	s.Means = &Means{
		CasesPer100k: stat.Mean(cases, nil),
		MedianAge:    stat.Mean(ages, nil),
		Aged65Above:  stat.Mean(aged, nil),
	}
	return s
}
