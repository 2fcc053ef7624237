package merge

import (
	"testing"
	"time"

	"airmet/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestInnerJoinMatchedRow(t *testing.T) {
	weather := []models.WeatherRecord{
		{Date: date(2024, 1, 1), TempC: 8.2, RhumPct: 76, WindSpeedMS: 3.1, PrecipMM: 0},
	}
	air := []models.AirQualityRecord{
		{Date: date(2024, 1, 1), City: "Rome", PM25: 14.3, NO2: 22.1},
	}

	merged, report := Inner(weather, air)
	if len(merged) != 1 {
		t.Fatalf("got %d rows, want 1", len(merged))
	}

	got := merged[0]
	if !got.Date.Equal(date(2024, 1, 1)) {
		t.Errorf("date: got %v", got.Date)
	}
	if got.City != "Rome" {
		t.Errorf("city: got %q, want Rome", got.City)
	}
	if got.TempC != 8.2 || got.RhumPct != 76 || got.WindSpeedMS != 3.1 || got.PrecipMM != 0 {
		t.Errorf("weather side wrong: %+v", got)
	}
	if got.PM25 != 14.3 || got.NO2 != 22.1 {
		t.Errorf("air side wrong: %+v", got)
	}
	if report.HasDrops() {
		t.Errorf("no drops expected: %+v", report)
	}
	if report.RowsOut != 1 {
		t.Errorf("RowsOut: got %d, want 1", report.RowsOut)
	}
}

func TestInnerJoinCountsUnmatchedBothSides(t *testing.T) {
	weather := []models.WeatherRecord{
		{Date: date(2024, 1, 1), TempC: 8},
		{Date: date(2024, 1, 2), TempC: 9},
		{Date: date(2024, 1, 3), TempC: 10},
	}
	air := []models.AirQualityRecord{
		{Date: date(2024, 1, 2), City: "Rome", PM25: 12, NO2: 20},
		{Date: date(2024, 1, 5), City: "Rome", PM25: 15, NO2: 25},
	}

	merged, report := Inner(weather, air)
	if len(merged) != 1 {
		t.Fatalf("got %d rows, want 1", len(merged))
	}
	if report.DroppedWeather != 2 {
		t.Errorf("DroppedWeather: got %d, want 2", report.DroppedWeather)
	}
	if report.DroppedAir != 1 {
		t.Errorf("DroppedAir: got %d, want 1", report.DroppedAir)
	}
	if len(report.UnmatchedWeather) != 2 || !report.UnmatchedWeather[0].Equal(date(2024, 1, 1)) {
		t.Errorf("UnmatchedWeather wrong: %v", report.UnmatchedWeather)
	}
	if len(report.UnmatchedAir) != 1 || !report.UnmatchedAir[0].Equal(date(2024, 1, 5)) {
		t.Errorf("UnmatchedAir wrong: %v", report.UnmatchedAir)
	}
}

func TestInnerJoinDisjointRanges(t *testing.T) {
	weather := []models.WeatherRecord{
		{Date: date(2024, 1, 1), TempC: 8},
		{Date: date(2024, 1, 2), TempC: 9},
	}
	air := []models.AirQualityRecord{
		{Date: date(2024, 6, 1), City: "Rome", PM25: 12, NO2: 20},
		{Date: date(2024, 6, 2), City: "Rome", PM25: 13, NO2: 21},
	}

	merged, report := Inner(weather, air)
	if len(merged) != 0 {
		t.Fatalf("disjoint ranges must produce zero rows, got %d", len(merged))
	}
	if report.DroppedWeather != 2 || report.DroppedAir != 2 {
		t.Errorf("all input rows must be counted as dropped: %+v", report)
	}
}

func TestInnerJoinOutputSorted(t *testing.T) {
	weather := []models.WeatherRecord{
		{Date: date(2024, 1, 3), TempC: 10},
		{Date: date(2024, 1, 1), TempC: 8},
		{Date: date(2024, 1, 2), TempC: 9},
	}
	air := []models.AirQualityRecord{
		{Date: date(2024, 1, 2), City: "Rome", PM25: 12, NO2: 20},
		{Date: date(2024, 1, 1), City: "Rome", PM25: 11, NO2: 19},
		{Date: date(2024, 1, 3), City: "Rome", PM25: 13, NO2: 21},
	}

	merged, _ := Inner(weather, air)
	if len(merged) != 3 {
		t.Fatalf("got %d rows, want 3", len(merged))
	}
	for i := 1; i < len(merged); i++ {
		if !merged[i-1].Date.Before(merged[i].Date) {
			t.Errorf("output not sorted: %v then %v", merged[i-1].Date, merged[i].Date)
		}
	}
}

func TestInnerJoinNormalizesTimestamps(t *testing.T) {
	// A weather date carrying a time-of-day component still joins on the day.
	weather := []models.WeatherRecord{
		{Date: time.Date(2024, 1, 1, 13, 30, 0, 0, time.UTC), TempC: 8},
	}
	air := []models.AirQualityRecord{
		{Date: date(2024, 1, 1), City: "Rome", PM25: 12, NO2: 20},
	}

	merged, _ := Inner(weather, air)
	if len(merged) != 1 {
		t.Fatalf("got %d rows, want 1", len(merged))
	}
	if !merged[0].Date.Equal(date(2024, 1, 1)) {
		t.Errorf("join key not normalized to midnight: %v", merged[0].Date)
	}
}
