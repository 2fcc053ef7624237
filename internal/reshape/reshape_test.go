package reshape

import (
	"testing"
	"time"

	"airmet/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWideToLongSkipsNullCells(t *testing.T) {
	recs := []models.AirQualityRecord{
		{Date: date(2024, 1, 1), City: "Rome", PM25: 14.3, NO2: 22.1},
		{Date: date(2024, 1, 2), City: "Rome", PM25: models.Missing(), NO2: 19.8},
	}

	samples := WideToLong(recs)
	if len(samples) != 3 {
		t.Fatalf("got %d samples, want 3", len(samples))
	}
	for _, s := range samples {
		if models.IsMissing(s.Value) {
			t.Errorf("null cell leaked into long form: %+v", s)
		}
	}
	// sorted by date then pollutant
	if samples[0].Pollutant != "no2" || samples[1].Pollutant != "pm25" {
		t.Errorf("unexpected order: %v, %v", samples[0].Pollutant, samples[1].Pollutant)
	}
	if samples[2].Pollutant != "no2" || !samples[2].Date.Equal(date(2024, 1, 2)) {
		t.Errorf("unexpected last sample: %+v", samples[2])
	}
}

func TestRoundTripIsLossless(t *testing.T) {
	orig := []models.AirQualityRecord{
		{Date: date(2024, 1, 1), City: "Rome", PM25: 14.3, NO2: 22.1},
		{Date: date(2024, 1, 2), City: "Rome", PM25: 9.87654321, NO2: models.Missing()},
		{Date: date(2024, 1, 3), City: "Rome", PM25: models.Missing(), NO2: 18},
	}

	got := LongToWide(WideToLong(orig))
	if len(got) != len(orig) {
		t.Fatalf("got %d records, want %d", len(got), len(orig))
	}
	for i := range orig {
		if !got[i].Date.Equal(orig[i].Date) {
			t.Errorf("row %d: date %v, want %v", i, got[i].Date, orig[i].Date)
		}
		if got[i].City != orig[i].City {
			t.Errorf("row %d: city %q, want %q", i, got[i].City, orig[i].City)
		}
		for _, p := range models.Pollutants {
			ov, gv := orig[i].Value(p), got[i].Value(p)
			if models.IsMissing(ov) != models.IsMissing(gv) {
				t.Errorf("row %d %s: missing mismatch", i, p)
				continue
			}
			if !models.IsMissing(ov) && ov != gv {
				t.Errorf("row %d %s: got %v, want %v", i, p, gv, ov)
			}
		}
	}
}

func TestLongToWideDuplicateSampleOverwrites(t *testing.T) {
	samples := []models.PollutantSample{
		{Date: date(2024, 1, 1), City: "Rome", Pollutant: "pm25", Value: 10},
		{Date: date(2024, 1, 1), City: "Rome", Pollutant: "pm25", Value: 12},
	}
	recs := LongToWide(samples)
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	if recs[0].PM25 != 12 {
		t.Errorf("got %v, want the later sample 12", recs[0].PM25)
	}
}

func TestWideToLongEmptyInput(t *testing.T) {
	if got := WideToLong(nil); got != nil {
		t.Errorf("expected nil for empty input, got %v", got)
	}
	if got := LongToWide(nil); len(got) != 0 {
		t.Errorf("expected no records for empty input, got %v", got)
	}
}
