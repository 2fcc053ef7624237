package llm

import (
	"strings"
	"testing"

	"airmet/internal/analyze"
)

func TestBuildPrompt(t *testing.T) {
	c := NewOpenAIClient("test-key", "gpt-4o-mini", nil)

	result := &analyze.Result{
		City:      "Rome",
		Rows:      31,
		StartDate: "2024-01-01",
		EndDate:   "2024-01-31",
		Summaries: []analyze.Summary{
			{Variable: "temp_c", Count: 31, Mean: 8.5},
		},
		Correlations: []analyze.Correlation{
			{WeatherVar: "temp_c", Pollutant: "pm25", Pearson: -0.42, N: 29},
		},
	}

	prompt, err := c.BuildPrompt(result)
	if err != nil {
		t.Fatalf("BuildPrompt failed: %v", err)
	}
	if !strings.Contains(prompt, "City: Rome") {
		t.Error("city missing from prompt")
	}
	if !strings.Contains(prompt, "2024-01-01 to 2024-01-31") {
		t.Error("period missing from prompt")
	}
	if !strings.Contains(prompt, `"pearson": -0.42`) {
		t.Errorf("analysis JSON missing from prompt:\n%s", prompt)
	}
}
