package models

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
)

// NumericText is a form value sent over JSON. It accepts a JSON number
// (450, 16.5) or a string ("450") and keeps the text, so the API and the
// HTML form go through the same validation.
type NumericText string

// UnmarshalJSON implements json.Unmarshaler.
func (t *NumericText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*t = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = NumericText(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.New("value must be a number or a string")
	}
	*t = NumericText(n.String())
	return nil
}

// PredictRequest is the JSON body accepted by POST /api/predictions.
type PredictRequest struct {
	CasesPer100k NumericText `json:"cases_per_100k"`
	MedianAge    NumericText `json:"median_age"`
	Aged65Above  NumericText `json:"aged_65_above"`
}

// SubmissionAPIResponse describes the outcome of one submission attempt.
type SubmissionAPIResponse struct {
	AttemptID   uuid.UUID         `json:"attempt_id"`
	State       string            `json:"state"`
	Risk        Risk              `json:"risk,omitempty"`
	Message     string            `json:"message,omitempty"`
	FieldErrors map[string]bool   `json:"field_errors,omitempty"`
	Record      *PredictionRecord `json:"record,omitempty"`
}
