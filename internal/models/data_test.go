package models

import (
	"math"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-15")
	if err != nil {
		t.Fatalf("ParseDate failed: %v", err)
	}
	want := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	if !d.Equal(want) {
		t.Errorf("got %v, want %v", d, want)
	}

	if _, err := ParseDate("15/01/2024"); err == nil {
		t.Error("expected error for non-ISO date")
	}
	if _, err := ParseDate(""); err == nil {
		t.Error("expected error for empty date")
	}
}

func TestParseDateTrimsWhitespace(t *testing.T) {
	d, err := ParseDate("  2024-06-01 ")
	if err != nil {
		t.Fatalf("ParseDate failed: %v", err)
	}
	if d.Day() != 1 || d.Month() != time.June {
		t.Errorf("unexpected date %v", d)
	}
}

func TestDay(t *testing.T) {
	ts := time.Date(2024, 3, 10, 17, 45, 12, 0, time.UTC)
	want := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	if got := Day(ts); !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}

	// A timestamp east of UTC can belong to a different UTC day.
	loc := time.FixedZone("UTC+3", 3*3600)
	ts = time.Date(2024, 3, 10, 1, 30, 0, 0, loc)
	want = time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	if got := Day(ts); !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestMissingSentinel(t *testing.T) {
	if !IsMissing(Missing()) {
		t.Error("Missing() should be detected by IsMissing")
	}
	if IsMissing(0) {
		t.Error("zero is a valid value, not missing")
	}
	if IsMissing(math.Inf(1)) {
		t.Error("infinity is not the missing sentinel")
	}
}

func TestWeatherRecordValueAccessors(t *testing.T) {
	r := WeatherRecord{}
	for _, name := range WeatherVars {
		r.SetValue(name, 5.5)
		if got := r.Value(name); got != 5.5 {
			t.Errorf("%s: got %v, want 5.5", name, got)
		}
	}
	if !IsMissing(r.Value("nope")) {
		t.Error("unknown variable should read as missing")
	}
}

func TestMergedRecordValueAccessors(t *testing.T) {
	r := MergedRecord{TempC: 8.2, PM25: 14.3}
	if got := r.Value("temp_c"); got != 8.2 {
		t.Errorf("temp_c: got %v, want 8.2", got)
	}
	if got := r.Value("pm25"); got != 14.3 {
		t.Errorf("pm25: got %v, want 14.3", got)
	}
	if !IsMissing(r.Value("unknown")) {
		t.Error("unknown variable should read as missing")
	}
}

func TestAddFlag(t *testing.T) {
	flags := AddFlag(nil, "outlier")
	flags = AddFlag(flags, "imputed")
	flags = AddFlag(flags, "outlier")

	if len(flags) != 2 {
		t.Fatalf("got %d flags, want 2: %v", len(flags), flags)
	}
	// AddFlag keeps the set sorted
	if flags[0] != "imputed" || flags[1] != "outlier" {
		t.Errorf("unexpected flag order: %v", flags)
	}
}

func TestMergeFlags(t *testing.T) {
	merged := MergeFlags([]string{"invalid"}, []string{"invalid", "deduped"})
	if len(merged) != 2 {
		t.Fatalf("got %d flags, want 2: %v", len(merged), merged)
	}
}

func TestFetchErrorMessage(t *testing.T) {
	err := &FetchError{Source: "open-meteo", URL: "http://example.com", StatusCode: 500}
	if got := err.Error(); got != "open-meteo fetch failed: http://example.com returned status 500" {
		t.Errorf("unexpected message: %q", got)
	}
}

func TestMergeReportHasDrops(t *testing.T) {
	r := &MergeReport{}
	if r.HasDrops() {
		t.Error("empty report should have no drops")
	}
	r.DroppedAir = 1
	if !r.HasDrops() {
		t.Error("report with dropped air rows should report drops")
	}
}
