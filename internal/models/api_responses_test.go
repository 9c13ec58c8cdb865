package models

import (
	"encoding/json"
	"testing"
)

func TestPredictRequest_Unmarshal(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    PredictRequest
		wantErr bool
	}{
		{
			name: "numbers",
			body: `{"cases_per_100k":450,"median_age":38,"aged_65_above":16.5}`,
			want: PredictRequest{CasesPer100k: "450", MedianAge: "38", Aged65Above: "16.5"},
		},
		{
			name: "strings",
			body: `{"cases_per_100k":"450","median_age":" 38 ","aged_65_above":"abc"}`,
			want: PredictRequest{CasesPer100k: "450", MedianAge: " 38 ", Aged65Above: "abc"},
		},
		{
			name: "mixed with null and missing",
			body: `{"cases_per_100k":1e3,"median_age":null}`,
			want: PredictRequest{CasesPer100k: "1e3"},
		},
		{
			name: "negative number kept for validation",
			body: `{"cases_per_100k":-5}`,
			want: PredictRequest{CasesPer100k: "-5"},
		},
		{name: "boolean", body: `{"median_age":true}`, wantErr: true},
		{name: "object", body: `{"median_age":{}}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got PredictRequest
			err := json.Unmarshal([]byte(tt.body), &got)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Unmarshal() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
