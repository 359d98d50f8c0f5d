package export

import (
	"testing"
	"time"
)

func TestFilename(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	cases := []struct {
		pattern string
		name    string
		format  Format
		want    string
	}{
		{"", "countries", FormatCSV, "countries_20240102T030405Z.csv"},
		{"{{.Name}}-{{.Date}}", "countries", FormatXLSX, "countries-20240102.xlsx"},
		{"report.json", "ignored", FormatJSON, "report.json"},
		{"{{.Name}}", "a/b\"c", FormatSQLite, "a_bc.sqlite"},
		{"", "", FormatNDJSON, "table_20240102T030405Z.ndjson"},
	}
	for _, tc := range cases {
		got, err := Filename(tc.pattern, tc.name, tc.format, now)
		if err != nil {
			t.Fatalf("filename %q: %v", tc.pattern, err)
		}
		if got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, got)
		}
	}
}

func TestFilename_InvalidPattern(t *testing.T) {
	_, err := Filename("{{.Missing", "x", FormatCSV, time.Now())
	if KindFromError(err) != KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
