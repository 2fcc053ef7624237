package reports

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"airmet/internal/models"
)

// ChartGenerator handles creation of static chart images
type ChartGenerator struct {
	outputDir string
}

// NewChartGenerator creates a new chart generator
func NewChartGenerator(outputDir string) *ChartGenerator {
	return &ChartGenerator{
		outputDir: outputDir,
	}
}

// GenerateCharts creates all PNG chart images for the report and returns
// the written file paths. A chart that cannot be rendered is skipped.
func (cg *ChartGenerator) GenerateCharts(merged []models.MergedRecord) ([]string, error) {
	if len(merged) == 0 {
		return nil, fmt.Errorf("no merged rows to chart")
	}

	var chartFiles []string

	if f, err := cg.generateDailySeriesChart(merged); err == nil {
		chartFiles = append(chartFiles, f)
	}

	if f, err := cg.generateScatterChart(merged, "temp_c", "pm25"); err == nil {
		chartFiles = append(chartFiles, f)
	}

	if f, err := cg.generateScatterChart(merged, "wind_speed_ms", "no2"); err == nil {
		chartFiles = append(chartFiles, f)
	}

	return chartFiles, nil
}

// generateDailySeriesChart creates a time series chart of temperature and
// pollutant concentrations over the merged date range.
func (cg *ChartGenerator) generateDailySeriesChart(merged []models.MergedRecord) (string, error) {
	filename := filepath.Join(cg.outputDir, "daily_series.png")

	tempX, tempY := seriesValues(merged, "temp_c")
	pm25X, pm25Y := seriesValues(merged, "pm25")
	no2X, no2Y := seriesValues(merged, "no2")

	graph := chart.Chart{
		Title: "Daily Temperature and Pollutants",
		TitleStyle: chart.Style{
			FontSize:  16,
			FontColor: drawing.ColorBlack,
		},
		Background: chart.Style{
			Padding: chart.Box{
				Top:    40,
				Left:   60,
				Right:  20,
				Bottom: 40,
			},
		},
		Height: 400,
		Width:  900,
		XAxis: chart.XAxis{
			Name: "Date",
			NameStyle: chart.Style{
				FontSize: 12,
			},
			Style: chart.Style{
				FontSize: 9,
			},
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			Name: "Value",
			NameStyle: chart.Style{
				FontSize: 12,
			},
			Style: chart.Style{
				FontSize: 10,
			},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name: "temp_c",
				Style: chart.Style{
					StrokeColor: drawing.Color{R: 51, G: 102, B: 204, A: 255},
					StrokeWidth: 2,
				},
				XValues: tempX,
				YValues: tempY,
			},
			chart.TimeSeries{
				Name: "pm25",
				Style: chart.Style{
					StrokeColor: drawing.Color{R: 204, G: 51, B: 51, A: 255},
					StrokeWidth: 2,
				},
				XValues: pm25X,
				YValues: pm25Y,
			},
			chart.TimeSeries{
				Name: "no2",
				Style: chart.Style{
					StrokeColor: drawing.Color{R: 255, G: 165, B: 0, A: 255},
					StrokeWidth: 2,
				},
				XValues: no2X,
				YValues: no2Y,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	f, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("failed to create daily series chart file: %w", err)
	}
	defer f.Close()

	if err := graph.Render(chart.PNG, f); err != nil {
		return "", fmt.Errorf("failed to render daily series chart: %w", err)
	}

	return filename, nil
}

// generateScatterChart creates a scatter plot of one pollutant against one
// weather variable.
func (cg *ChartGenerator) generateScatterChart(merged []models.MergedRecord, weatherVar, pollutant string) (string, error) {
	filename := filepath.Join(cg.outputDir, fmt.Sprintf("%s_vs_%s.png", pollutant, weatherVar))

	var xs, ys []float64
	for i := range merged {
		x := merged[i].Value(weatherVar)
		y := merged[i].Value(pollutant)
		if models.IsMissing(x) || models.IsMissing(y) {
			continue
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}
	if len(xs) == 0 {
		return "", fmt.Errorf("no complete pairs for %s vs %s", pollutant, weatherVar)
	}

	graph := chart.Chart{
		Title: fmt.Sprintf("%s vs %s", pollutant, weatherVar),
		TitleStyle: chart.Style{
			FontSize:  16,
			FontColor: drawing.ColorBlack,
		},
		Background: chart.Style{
			Padding: chart.Box{
				Top:    40,
				Left:   60,
				Right:  20,
				Bottom: 40,
			},
		},
		Height: 400,
		Width:  600,
		XAxis: chart.XAxis{
			Name: weatherVar,
			NameStyle: chart.Style{
				FontSize: 12,
			},
			Style: chart.Style{
				FontSize: 10,
			},
		},
		YAxis: chart.YAxis{
			Name: pollutant,
			NameStyle: chart.Style{
				FontSize: 12,
			},
			Style: chart.Style{
				FontSize: 10,
			},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name: pollutant,
				Style: chart.Style{
					StrokeWidth: chart.Disabled,
					DotColor:    drawing.Color{R: 51, G: 102, B: 204, A: 255},
					DotWidth:    4,
				},
				XValues: xs,
				YValues: ys,
			},
		},
	}

	f, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("failed to create scatter chart file: %w", err)
	}
	defer f.Close()

	if err := graph.Render(chart.PNG, f); err != nil {
		return "", fmt.Errorf("failed to render scatter chart: %w", err)
	}

	return filename, nil
}

// seriesValues extracts the (date, value) pairs for one variable, skipping
// missing cells. go-chart cannot plot NaN points.
func seriesValues(merged []models.MergedRecord, name string) ([]time.Time, []float64) {
	var xs []time.Time
	var ys []float64
	for i := range merged {
		v := merged[i].Value(name)
		if models.IsMissing(v) {
			continue
		}
		xs = append(xs, merged[i].Date)
		ys = append(ys, v)
	}
	return xs, ys
}
