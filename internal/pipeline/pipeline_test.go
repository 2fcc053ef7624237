package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"airmet/internal/analyze"
	"airmet/internal/config"
	"airmet/internal/csvio"
	"airmet/internal/fetchers"
	"airmet/internal/storage"
)

// newWeatherServer serves three days of hourly weather, one sample per day.
func newWeatherServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"hourly":{
			"time":["2024-01-01T00:00","2024-01-02T00:00","2024-01-03T00:00"],
			"temperature_2m":[8.0,9.0,10.0],
			"relative_humidity_2m":[76,74,72],
			"wind_speed_10m":[3.0,2.0,4.0],
			"precipitation":[0.0,1.5,0.0]}}`)
	}))
}

func writeAirCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "air.csv")
	content := "date,pm25,no2\n" +
		"2024-01-01,14.3,22.1\n" +
		"2024-01-02,12.0,19.8\n" +
		"2024-01-03,16.5,24.0\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write air CSV: %v", err)
	}
	return path
}

func newTestPipeline(t *testing.T, weatherURL, airCSV string) (*Pipeline, storage.StorageClient) {
	t.Helper()
	cfg := &config.Config{
		City:          "Rome",
		Latitude:      41.9028,
		Longitude:     12.4964,
		StartDate:     "2024-01-01",
		EndDate:       "2024-01-03",
		DataDir:       filepath.Join(t.TempDir(), "data"),
		StorageMode:   "local",
		OpenMeteoURL:  weatherURL,
		AirQualityCSV: airCSV,
	}

	store, err := storage.NewStorageClient(context.Background(), storage.DeploymentLocal, cfg)
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return New(cfg, store, fetchers.NewDataFetcher(nil), nil), store
}

func TestRunEndToEnd(t *testing.T) {
	server := newWeatherServer()
	defer server.Close()

	p, store := newTestPipeline(t, server.URL, writeAirCSV(t))
	ctx := context.Background()

	if err := p.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// every stage leaves a checkpoint
	checkpoints := []string{
		"raw/weather.csv",
		"raw/air_quality.csv",
		"cleaned/weather.csv",
		"cleaned/air_quality.csv",
		"cleaned/air_quality_long.csv",
		"merged/daily.csv",
		"reports/analysis.json",
		"reports/report.md",
		"reports/report.html",
	}
	for _, path := range checkpoints {
		exists, err := store.FileExists(ctx, path)
		if err != nil {
			t.Fatalf("FileExists %s failed: %v", path, err)
		}
		if !exists {
			t.Errorf("checkpoint %s missing", path)
		}
	}
}

func TestRunMergedOutput(t *testing.T) {
	server := newWeatherServer()
	defer server.Close()

	p, store := newTestPipeline(t, server.URL, writeAirCSV(t))
	ctx := context.Background()

	if err := p.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	data, err := store.GetFile(ctx, "merged/daily.csv")
	if err != nil {
		t.Fatalf("failed to read merged checkpoint: %v", err)
	}
	merged, err := csvio.ReadMerged(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to parse merged checkpoint: %v", err)
	}
	if len(merged) != 3 {
		t.Fatalf("got %d merged rows, want 3", len(merged))
	}

	first := merged[0]
	if first.Date.Format("2006-01-02") != "2024-01-01" {
		t.Errorf("first date: got %v", first.Date)
	}
	if first.City != "Rome" {
		t.Errorf("city: got %q", first.City)
	}
	if first.TempC != 8 || first.PM25 != 14.3 || first.NO2 != 22.1 {
		t.Errorf("first row values wrong: %+v", first)
	}
}

func TestRunAnalysisOutput(t *testing.T) {
	server := newWeatherServer()
	defer server.Close()

	p, store := newTestPipeline(t, server.URL, writeAirCSV(t))
	ctx := context.Background()

	if err := p.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	data, err := store.GetFile(ctx, "reports/analysis.json")
	if err != nil {
		t.Fatalf("failed to read analysis checkpoint: %v", err)
	}
	var result analyze.Result
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("analysis.json is not valid JSON: %v", err)
	}
	if result.City != "Rome" || result.Rows != 3 {
		t.Errorf("unexpected analysis header: city=%q rows=%d", result.City, result.Rows)
	}
	if len(result.Correlations) != 8 {
		t.Errorf("got %d correlations, want 8", len(result.Correlations))
	}
}

func TestRunReportContent(t *testing.T) {
	server := newWeatherServer()
	defer server.Close()

	p, store := newTestPipeline(t, server.URL, writeAirCSV(t))
	ctx := context.Background()

	if err := p.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	md, err := store.GetFile(ctx, "reports/report.md")
	if err != nil {
		t.Fatalf("failed to read markdown report: %v", err)
	}
	if !strings.Contains(string(md), "# Weather and Air Quality Report: Rome") {
		t.Error("markdown report title missing")
	}
	if !strings.Contains(string(md), "## Daily Summaries") {
		t.Error("summaries section missing")
	}

	page, err := store.GetFile(ctx, "reports/report.html")
	if err != nil {
		t.Fatalf("failed to read HTML report: %v", err)
	}
	if !strings.Contains(string(page), "<!DOCTYPE html>") {
		t.Error("HTML report is not a complete document")
	}
}

func TestRunFailsOnDisjointRanges(t *testing.T) {
	server := newWeatherServer()
	defer server.Close()

	// air-quality data from a different year: the inner join is empty
	airPath := filepath.Join(t.TempDir(), "air.csv")
	content := "date,pm25,no2\n2023-06-01,14.3,22.1\n"
	if err := os.WriteFile(airPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write air CSV: %v", err)
	}

	p, _ := newTestPipeline(t, server.URL, airPath)
	err := p.Run(context.Background())
	if err == nil {
		t.Fatal("expected failure when the merge produces no rows")
	}
	if !strings.Contains(err.Error(), "no rows") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRunFailsOnFetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	p, _ := newTestPipeline(t, server.URL, writeAirCSV(t))
	if err := p.Run(context.Background()); err == nil {
		t.Fatal("expected failure when the weather source fails")
	}
}
