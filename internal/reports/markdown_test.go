package reports

import (
	"strings"
	"testing"

	"airmet/internal/analyze"
	"airmet/internal/models"
)

func sampleResult() *analyze.Result {
	return &analyze.Result{
		City:      "Rome",
		Rows:      31,
		StartDate: "2024-01-01",
		EndDate:   "2024-01-31",
		Summaries: []analyze.Summary{
			{Variable: "temp_c", Count: 31, Mean: 8.5, Std: 2.1, Min: 3.2, Max: 14.8},
			{Variable: "pm25", Count: 29, Mean: 18.4, Std: 6.3, Min: 6.1, Max: 41.2},
		},
		Correlations: []analyze.Correlation{
			{WeatherVar: "temp_c", Pollutant: "pm25", Pearson: -0.42, N: 29},
			{WeatherVar: "wind_speed_ms", Pollutant: "no2", Pearson: models.Missing(), N: 2},
		},
	}
}

func TestBuildMarkdownTables(t *testing.T) {
	md := BuildMarkdown(sampleResult(), nil, nil, "")

	if !strings.Contains(md, "# Weather and Air Quality Report: Rome") {
		t.Error("title missing")
	}
	if !strings.Contains(md, "2024-01-01 to 2024-01-31") {
		t.Error("period line missing")
	}
	if !strings.Contains(md, "| temp_c | 31 | 8.50 | 2.10 | 3.20 | 14.80 |") {
		t.Errorf("summary row missing:\n%s", md)
	}
	if !strings.Contains(md, "| temp_c | pm25 | -0.42 | 29 |") {
		t.Errorf("correlation row missing:\n%s", md)
	}
	// a correlation with too few pairs renders as a dash, never NaN
	if !strings.Contains(md, "| wind_speed_ms | no2 | - | 2 |") {
		t.Errorf("missing correlation should render as dash:\n%s", md)
	}
	if strings.Contains(md, "NaN") {
		t.Errorf("NaN leaked into the report:\n%s", md)
	}
}

func TestBuildMarkdownCleanAndMergeSections(t *testing.T) {
	cleanReports := []models.CleanReport{
		{Dataset: "weather", RowsIn: 33, RowsOut: 31, DuplicatesCollapsed: 2, ValuesImputed: 3, ValuesNulled: 1},
	}
	mergeReport := &models.MergeReport{RowsOut: 29, DroppedWeather: 2, DroppedAir: 0}

	md := BuildMarkdown(sampleResult(), cleanReports, mergeReport, "")

	if !strings.Contains(md, "## Data Cleaning") {
		t.Error("cleaning section missing")
	}
	if !strings.Contains(md, "| weather | 33 | 31 | 2 | 3 | 1 | 0 |") {
		t.Errorf("cleaning row missing:\n%s", md)
	}
	if !strings.Contains(md, "## Merge Coverage") {
		t.Error("merge section missing")
	}
	if !strings.Contains(md, "29 days matched") {
		t.Errorf("merge counts missing:\n%s", md)
	}
}

func TestBuildMarkdownNarrativeSection(t *testing.T) {
	md := BuildMarkdown(sampleResult(), nil, nil, "Colder days show higher PM2.5.")
	if !strings.Contains(md, "## Interpretation") {
		t.Error("narrative section missing")
	}
	if !strings.Contains(md, "Colder days show higher PM2.5.") {
		t.Error("narrative text missing")
	}

	md = BuildMarkdown(sampleResult(), nil, nil, "")
	if strings.Contains(md, "## Interpretation") {
		t.Error("empty narrative must not produce a section")
	}
}
