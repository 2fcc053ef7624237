package reports

import (
	"fmt"
	"strings"

	"airmet/internal/analyze"
	"airmet/internal/models"
)

// BuildMarkdown renders the analysis result as a markdown report. The
// narrative section is optional and appended verbatim when non-empty.
func BuildMarkdown(result *analyze.Result, cleanReports []models.CleanReport, mergeReport *models.MergeReport, narrative string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("# Weather and Air Quality Report: %s\n\n", result.City))
	b.WriteString(fmt.Sprintf("Period: %s to %s. %d merged daily observations.\n\n",
		result.StartDate, result.EndDate, result.Rows))

	b.WriteString("## Daily Summaries\n\n")
	b.WriteString("| Variable | N | Mean | Std Dev | Min | Max |\n")
	b.WriteString("|----------|---|------|---------|-----|-----|\n")
	for _, s := range result.Summaries {
		b.WriteString(fmt.Sprintf("| %s | %d | %s | %s | %s | %s |\n",
			s.Variable, s.Count, mdNum(s.Mean), mdNum(s.Std), mdNum(s.Min), mdNum(s.Max)))
	}
	b.WriteString("\n")

	b.WriteString("## Weather vs Pollutant Correlations\n\n")
	b.WriteString("| Weather Variable | Pollutant | Pearson r | Pairs |\n")
	b.WriteString("|------------------|-----------|-----------|-------|\n")
	for _, c := range result.Correlations {
		b.WriteString(fmt.Sprintf("| %s | %s | %s | %d |\n",
			c.WeatherVar, c.Pollutant, mdNum(c.Pearson), c.N))
	}
	b.WriteString("\n")

	if len(cleanReports) > 0 {
		b.WriteString("## Data Cleaning\n\n")
		b.WriteString("| Dataset | Rows In | Rows Out | Duplicates Collapsed | Values Imputed | Values Nulled | Outliers Flagged |\n")
		b.WriteString("|---------|---------|----------|----------------------|----------------|---------------|------------------|\n")
		for _, r := range cleanReports {
			b.WriteString(fmt.Sprintf("| %s | %d | %d | %d | %d | %d | %d |\n",
				r.Dataset, r.RowsIn, r.RowsOut, r.DuplicatesCollapsed, r.ValuesImputed, r.ValuesNulled, r.OutliersFlagged))
		}
		b.WriteString("\n")
	}

	if mergeReport != nil {
		b.WriteString("## Merge Coverage\n\n")
		b.WriteString(fmt.Sprintf("%d days matched on both sources. %d weather-only days and %d air-quality-only days were dropped by the inner join.\n\n",
			mergeReport.RowsOut, mergeReport.DroppedWeather, mergeReport.DroppedAir))
	}

	if narrative != "" {
		b.WriteString("## Interpretation\n\n")
		b.WriteString(strings.TrimSpace(narrative))
		b.WriteString("\n")
	}

	return b.String()
}

// mdNum formats a value for a markdown table cell, rendering missing
// values as a dash.
func mdNum(v float64) string {
	if models.IsMissing(v) {
		return "-"
	}
	return fmt.Sprintf("%.2f", v)
}
