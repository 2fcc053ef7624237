// Package charts renders embeddable go-echarts fragments for the HTML
// report: the daily series line chart, the weather-pollutant correlation
// heatmap, and scatter plots.
package charts

import (
	"bytes"
	"fmt"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"airmet/internal/analyze"
	"airmet/internal/models"
)

// Generator builds chart HTML for one merged dataset.
type Generator struct{}

// NewGenerator creates a chart generator
func NewGenerator() *Generator {
	return &Generator{}
}

// DailySeriesChart renders the merged daily series: temperature on one
// line, pollutant concentrations on the others.
func (g *Generator) DailySeriesChart(merged []models.MergedRecord) (string, error) {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:  types.ThemeWesteros,
			Width:  "900px",
			Height: "420px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Daily Weather and Air Quality",
			Subtitle: "Temperature, PM2.5 and NO2 by date",
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Date"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Value"}),
		charts.WithLegendOpts(opts.Legend{Show: true}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: "axis"}),
	)

	xAxis := make([]string, len(merged))
	tempData := make([]opts.LineData, len(merged))
	pm25Data := make([]opts.LineData, len(merged))
	no2Data := make([]opts.LineData, len(merged))
	for i, r := range merged {
		xAxis[i] = r.Date.Format(models.DateLayout)
		tempData[i] = lineValue(r.TempC)
		pm25Data[i] = lineValue(r.PM25)
		no2Data[i] = lineValue(r.NO2)
	}

	line.SetXAxis(xAxis).
		AddSeries("temp_c", tempData).
		AddSeries("pm25", pm25Data).
		AddSeries("no2", no2Data).
		SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: true}))

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		return "", fmt.Errorf("failed to render daily series chart: %w", err)
	}
	return buf.String(), nil
}

// CorrelationHeatmap renders the weather-variable x pollutant Pearson
// correlation matrix.
func (g *Generator) CorrelationHeatmap(result *analyze.Result) (string, error) {
	heatmap := charts.NewHeatMap()
	heatmap.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:  types.ThemeWesteros,
			Width:  "700px",
			Height: "400px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Weather vs Pollutant Correlation",
			Subtitle: "Pearson r over pairwise-complete observations",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "category",
			Data: models.WeatherVars,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type: "category",
			Data: models.Pollutants,
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: true,
			Min:        -1,
			Max:        1,
			InRange: &opts.VisualMapInRange{
				Color: []string{"#313695", "#74add1", "#ffffbf", "#f46d43", "#a50026"},
			},
		}),
	)

	xIndex := indexOf(models.WeatherVars)
	yIndex := indexOf(models.Pollutants)

	var cells []opts.HeatMapData
	for _, c := range result.Correlations {
		if models.IsMissing(c.Pearson) {
			continue
		}
		cells = append(cells, opts.HeatMapData{
			Value: [3]interface{}{xIndex[c.WeatherVar], yIndex[c.Pollutant], round2(c.Pearson)},
		})
	}
	heatmap.AddSeries("pearson", cells)

	var buf bytes.Buffer
	if err := heatmap.Render(&buf); err != nil {
		return "", fmt.Errorf("failed to render correlation heatmap: %w", err)
	}
	return buf.String(), nil
}

// ScatterChart renders one weather variable against one pollutant, one
// point per merged row where both values are present.
func (g *Generator) ScatterChart(merged []models.MergedRecord, weatherVar, pollutant string) (string, error) {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:  types.ThemeWesteros,
			Width:  "600px",
			Height: "420px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title: fmt.Sprintf("%s vs %s", pollutant, weatherVar),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: weatherVar, Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: pollutant, Type: "value"}),
	)

	var points []opts.ScatterData
	for i := range merged {
		x := merged[i].Value(weatherVar)
		y := merged[i].Value(pollutant)
		if models.IsMissing(x) || models.IsMissing(y) {
			continue
		}
		points = append(points, opts.ScatterData{
			Value:      []interface{}{round2(x), round2(y)},
			SymbolSize: 8,
		})
	}
	scatter.AddSeries(pollutant, points)

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		return "", fmt.Errorf("failed to render scatter chart: %w", err)
	}
	return buf.String(), nil
}

func lineValue(v float64) opts.LineData {
	if models.IsMissing(v) {
		return opts.LineData{Value: nil}
	}
	return opts.LineData{Value: round2(v)}
}

func indexOf(names []string) map[string]int {
	m := make(map[string]int, len(names))
	for i, n := range names {
		m[n] = i
	}
	return m
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
