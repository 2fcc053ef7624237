package reports

import (
	"bytes"
	"fmt"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"airmet/internal/analyze"
)

// HTMLBuilder handles HTML generation with goldmark
type HTMLBuilder struct {
	goldmark goldmark.Markdown
}

// NewHTMLBuilder creates an HTML builder
func NewHTMLBuilder() *HTMLBuilder {
	// Configure goldmark with extensions
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithUnsafe(), // Allow raw HTML in markdown
		),
	)

	return &HTMLBuilder{
		goldmark: md,
	}
}

// ConvertMarkdownToHTML converts markdown to HTML using goldmark
func (h *HTMLBuilder) ConvertMarkdownToHTML(markdownContent string) (string, error) {
	var buf bytes.Buffer
	if err := h.goldmark.Convert([]byte(markdownContent), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}
	return buf.String(), nil
}

// ChartSnippets holds the rendered go-echarts fragments embedded into the
// report page.
type ChartSnippets struct {
	DailySeries        string
	CorrelationHeatmap string
	Scatter            []string
}

// BuildCompleteHTML creates a complete HTML document from the converted
// report body and the chart snippets.
func (h *HTMLBuilder) BuildCompleteHTML(content string, result *analyze.Result, snippets *ChartSnippets) string {
	generatedAt := result.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now().UTC()
	}

	scatterSection := ""
	if snippets != nil {
		for _, s := range snippets.Scatter {
			scatterSection += fmt.Sprintf(`
        <div class="chart-container">
            %s
        </div>`, s)
		}
	}

	dailySeries := ""
	heatmap := ""
	if snippets != nil {
		dailySeries = snippets.DailySeries
		heatmap = snippets.CorrelationHeatmap
	}

	page := fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Weather and Air Quality Report - %s</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            line-height: 1.6;
            color: #333;
            max-width: 1100px;
            margin: 0 auto;
            padding: 20px;
            background-color: #f8f9fa;
        }
        .header {
            background: linear-gradient(135deg, #2c7fb8 0%%, #41b6c4 100%%);
            color: white;
            padding: 30px;
            border-radius: 10px;
            margin-bottom: 30px;
            text-align: center;
        }
        .header h1 {
            margin: 0;
            font-size: 2.2em;
        }
        .header .period {
            opacity: 0.9;
            margin-top: 10px;
        }
        .content {
            background: white;
            padding: 30px;
            border-radius: 8px;
            box-shadow: 0 2px 10px rgba(0,0,0,0.1);
            margin-bottom: 30px;
        }
        .charts-section {
            background: white;
            padding: 30px;
            border-radius: 8px;
            box-shadow: 0 2px 10px rgba(0,0,0,0.1);
            margin-bottom: 30px;
        }
        .chart-container {
            margin-bottom: 40px;
        }
        .footer {
            text-align: center;
            color: #666;
            font-size: 0.9em;
            margin-top: 30px;
        }
        h1, h2, h3 { color: #333; }
        h2 { border-bottom: 2px solid #2c7fb8; padding-bottom: 5px; }
        table { border-collapse: collapse; width: 100%%; margin: 20px 0; }
        th, td { border: 1px solid #ddd; padding: 10px; text-align: left; }
        th { background-color: #f8f9fa; font-weight: bold; }
    </style>
</head>
<body>
    <div class="header">
        <h1>Weather and Air Quality Report</h1>
        <div class="period">%s | %s to %s | %d days</div>
    </div>

    <div class="content">
        %s
    </div>

    <div class="charts-section">
        <h2>Visualizations</h2>

        <div class="chart-container">
            %s
        </div>

        <div class="chart-container">
            %s
        </div>
%s
    </div>

    <div class="footer">
        <p>Data sources: Open-Meteo ERA5 archive, OpenAQ</p>
        <p>Generated: %s</p>
    </div>
</body>
</html>`,
		result.City,
		result.City,
		result.StartDate,
		result.EndDate,
		result.Rows,
		content,
		dailySeries,
		heatmap,
		scatterSection,
		generatedAt.Format("2006-01-02 15:04:05 UTC"),
	)

	return page
}
