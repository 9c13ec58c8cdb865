package models

import "testing"

func TestParseRisk(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Risk
		ok    bool
	}{
		{"low", "Low", RiskLow, true},
		{"medium", "Medium", RiskMedium, true},
		{"high", "High", RiskHigh, true},
		{"lowercase is unknown", "low", "", false},
		{"empty", "", "", false},
		{"other", "Severe", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseRisk(tt.input)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ParseRisk(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestRisk_Label(t *testing.T) {
	if got := RiskMedium.Label(); got != "MEDIUM" {
		t.Errorf("Label() = %q, want %q", got, "MEDIUM")
	}
	if got := RiskHigh.CSSClass(); got != "risk-high" {
		t.Errorf("CSSClass() = %q, want %q", got, "risk-high")
	}
}

func TestGlobalStats_Valid(t *testing.T) {
	ok := &GlobalStats{Cases: 10, Deaths: 1, AffectedCountries: 231}
	if !ok.Valid() {
		t.Error("expected non-negative stats to be valid")
	}
	bad := &GlobalStats{Cases: 10, TodayDeaths: -1}
	if bad.Valid() {
		t.Error("expected negative figure to be invalid")
	}
}

func TestUser_DisplayName(t *testing.T) {
	tests := []struct {
		name string
		user *User
		want string
	}{
		{"nil user", nil, ""},
		{"name wins", &User{Sub: "s", Email: "e@x", Name: "Ada"}, "Ada"},
		{"email fallback", &User{Sub: "s", Email: "e@x"}, "e@x"},
		{"sub fallback", &User{Sub: "s"}, "s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}
