package validation

import (
	"errors"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"covidrisk/internal/models"
)

// DecimalPattern defines the accepted number format: optional sign, digits with
// an optional fraction, optional exponent. Hex floats, Inf and NaN are rejected.
var DecimalPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// Field names shared by the form, the API and the predictor payload.
const (
	FieldCasesPer100k = "cases_per_100k"
	FieldMedianAge    = "median_age"
	FieldAged65Above  = "aged_65_above"
)

// Fields lists the form fields in display order.
var Fields = []string{FieldCasesPer100k, FieldMedianAge, FieldAged65Above}

// FormInput holds the raw text of the three predictor fields.
type FormInput struct {
	CasesPer100k string
	MedianAge    string
	Aged65Above  string
}

// Get returns the raw value of a field by name.
func (f FormInput) Get(field string) string {
	switch field {
	case FieldCasesPer100k:
		return f.CasesPer100k
	case FieldMedianAge:
		return f.MedianAge
	case FieldAged65Above:
		return f.Aged65Above
	}
	return ""
}

// With returns a copy with one field replaced. Unknown fields are ignored.
func (f FormInput) With(field, value string) FormInput {
	switch field {
	case FieldCasesPer100k:
		f.CasesPer100k = value
	case FieldMedianAge:
		f.MedianAge = value
	case FieldAged65Above:
		f.Aged65Above = value
	}
	return f
}

// FieldErrors flags which fields failed validation.
type FieldErrors struct {
	CasesPer100k bool
	MedianAge    bool
	Aged65Above  bool
}

// Any reports whether at least one field is flagged.
func (e FieldErrors) Any() bool {
	return e.CasesPer100k || e.MedianAge || e.Aged65Above
}

// Has reports whether the named field is flagged.
func (e FieldErrors) Has(field string) bool {
	switch field {
	case FieldCasesPer100k:
		return e.CasesPer100k
	case FieldMedianAge:
		return e.MedianAge
	case FieldAged65Above:
		return e.Aged65Above
	}
	return false
}

// Clear returns a copy with the named field unflagged.
func (e FieldErrors) Clear(field string) FieldErrors {
	switch field {
	case FieldCasesPer100k:
		e.CasesPer100k = false
	case FieldMedianAge:
		e.MedianAge = false
	case FieldAged65Above:
		e.Aged65Above = false
	}
	return e
}

// Map returns the flagged fields keyed by name, or nil when none are flagged.
func (e FieldErrors) Map() map[string]bool {
	if !e.Any() {
		return nil
	}
	m := make(map[string]bool)
	for _, f := range Fields {
		if e.Has(f) {
			m[f] = true
		}
	}
	return m
}

// IsField reports whether name is one of the predictor fields.
func IsField(name string) bool {
	for _, f := range Fields {
		if f == name {
			return true
		}
	}
	return false
}

// ValidateField parses a raw field value into a non-negative finite number.
func ValidateField(raw string) (float64, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || !DecimalPattern.MatchString(trimmed) {
		return 0, false
	}

	n, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
		return 0, false
	}
	if n < 0 {
		return 0, false
	}
	// Normalise -0 so it renders as 0.
	return n + 0, true
}

// ValidateForm validates all three fields. The input is only usable when
// every field is valid.
func ValidateForm(in FormInput) (models.PredictionInput, FieldErrors, bool) {
	var out models.PredictionInput
	var errs FieldErrors
	var ok bool

	if out.CasesPer100k, ok = ValidateField(in.CasesPer100k); !ok {
		errs.CasesPer100k = true
	}
	if out.MedianAge, ok = ValidateField(in.MedianAge); !ok {
		errs.MedianAge = true
	}
	if out.Aged65Above, ok = ValidateField(in.Aged65Above); !ok {
		errs.Aged65Above = true
	}

	if errs.Any() {
		return models.PredictionInput{}, errs, false
	}
	return out, errs, true
}

// ValidateBaseURL checks that a configured upstream URL is absolute and uses
// http or https.
func ValidateBaseURL(urlStr string) error {
	if urlStr == "" {
		return errors.New("URL is required")
	}

	u, err := url.Parse(urlStr)
	if err != nil {
		return errors.New("invalid URL format")
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return errors.New("URL must use http:// or https:// scheme")
	}

	if u.Host == "" {
		return errors.New("URL must have a valid host")
	}

	return nil
}
