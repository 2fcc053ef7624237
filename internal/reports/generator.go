// Package reports renders the run outputs: the markdown report, the
// self-contained HTML report with embedded charts, and the static PNG
// chart images.
package reports

import (
	"fmt"

	"airmet/internal/analyze"
	"airmet/internal/charts"
	"airmet/internal/logger"
	"airmet/internal/models"
)

// Generator assembles the markdown and HTML reports for one run.
type Generator struct {
	htmlBuilder *HTMLBuilder
	chartGen    *charts.Generator
	log         *logger.Logger
}

// NewGenerator creates a report generator
func NewGenerator(log *logger.Logger) *Generator {
	if log == nil {
		log = logger.Global()
	}
	return &Generator{
		htmlBuilder: NewHTMLBuilder(),
		chartGen:    charts.NewGenerator(),
		log:         log.WithComponent("reports"),
	}
}

// Generate builds the markdown report and the complete HTML page. A chart
// that fails to render is logged and left out rather than failing the run.
func (g *Generator) Generate(
	result *analyze.Result,
	merged []models.MergedRecord,
	cleanReports []models.CleanReport,
	mergeReport *models.MergeReport,
	narrative string) (markdown string, htmlPage string, err error) {

	markdown = BuildMarkdown(result, cleanReports, mergeReport, narrative)

	content, err := g.htmlBuilder.ConvertMarkdownToHTML(markdown)
	if err != nil {
		return "", "", fmt.Errorf("failed to build report HTML: %w", err)
	}

	snippets := g.buildChartSnippets(result, merged)
	htmlPage = g.htmlBuilder.BuildCompleteHTML(content, result, snippets)

	g.log.Infof("Generated report: %d characters markdown, %d characters HTML", len(markdown), len(htmlPage))
	return markdown, htmlPage, nil
}

// buildChartSnippets renders the embeddable chart fragments.
func (g *Generator) buildChartSnippets(result *analyze.Result, merged []models.MergedRecord) *ChartSnippets {
	snippets := &ChartSnippets{}

	if s, err := g.chartGen.DailySeriesChart(merged); err == nil {
		snippets.DailySeries = s
	} else {
		g.log.Warnf("Failed to render daily series chart: %v", err)
	}

	if s, err := g.chartGen.CorrelationHeatmap(result); err == nil {
		snippets.CorrelationHeatmap = s
	} else {
		g.log.Warnf("Failed to render correlation heatmap: %v", err)
	}

	for _, pair := range [][2]string{{"temp_c", "pm25"}, {"wind_speed_ms", "no2"}} {
		s, err := g.chartGen.ScatterChart(merged, pair[0], pair[1])
		if err != nil {
			g.log.Warnf("Failed to render scatter chart %s vs %s: %v", pair[1], pair[0], err)
			continue
		}
		snippets.Scatter = append(snippets.Scatter, s)
	}

	return snippets
}
