package models

import (
	"strings"
	"time"
)

// Risk is the classification returned by the prediction backend.
type Risk string

// Risk levels
const (
	RiskLow    Risk = "Low"
	RiskMedium Risk = "Medium"
	RiskHigh   Risk = "High"
)

// RiskLevels lists every risk level in display order.
var RiskLevels = []Risk{RiskLow, RiskMedium, RiskHigh}

// ParseRisk maps a backend value onto a known risk level.
func ParseRisk(s string) (Risk, bool) {
	for _, r := range RiskLevels {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

// Label returns the upper-cased form shown in the result panel.
func (r Risk) Label() string {
	return strings.ToUpper(string(r))
}

// CSSClass returns the style suffix used by the templates.
func (r Risk) CSSClass() string {
	return "risk-" + strings.ToLower(string(r))
}

// PredictionInput holds the three validated figures sent to the predictor.
type PredictionInput struct {
	CasesPer100k float64 `json:"cases_per_100k"`
	MedianAge    float64 `json:"median_age"`
	Aged65Above  float64 `json:"aged_65_above"`
}

// PredictionRecord is one completed prediction in a session's history.
type PredictionRecord struct {
	ID           int64     `json:"id"`
	CasesPer100k float64   `json:"cases_per_100k"`
	MedianAge    float64   `json:"median_age"`
	Aged65Above  float64   `json:"aged_65_above"`
	Risk         Risk      `json:"risk"`
	Timestamp    time.Time `json:"timestamp"`
}

// Input returns the figures the record was predicted from.
func (p PredictionRecord) Input() PredictionInput {
	return PredictionInput{
		CasesPer100k: p.CasesPer100k,
		MedianAge:    p.MedianAge,
		Aged65Above:  p.Aged65Above,
	}
}
