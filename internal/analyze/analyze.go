// Package analyze computes descriptive statistics over the merged dataset:
// per-variable summaries and pairwise weather-pollutant correlations. It is
// read-only over its input.
package analyze

import (
	"encoding/json"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"airmet/internal/models"
)

// Summary is the descriptive summary of one variable.
type Summary struct {
	Variable string  `json:"variable"`
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	Std      float64 `json:"std"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
}

// MarshalJSON renders missing statistics as null; encoding/json rejects NaN.
func (s Summary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Variable string   `json:"variable"`
		Count    int      `json:"count"`
		Mean     *float64 `json:"mean"`
		Std      *float64 `json:"std"`
		Min      *float64 `json:"min"`
		Max      *float64 `json:"max"`
	}{s.Variable, s.Count, jsonNum(s.Mean), jsonNum(s.Std), jsonNum(s.Min), jsonNum(s.Max)})
}

// Correlation is the Pearson correlation between one weather variable and
// one pollutant over pairwise-complete observations.
type Correlation struct {
	WeatherVar string  `json:"weather_var"`
	Pollutant  string  `json:"pollutant"`
	Pearson    float64 `json:"pearson"`
	N          int     `json:"n"`
}

// MarshalJSON renders an undefined correlation as null.
func (c Correlation) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		WeatherVar string   `json:"weather_var"`
		Pollutant  string   `json:"pollutant"`
		Pearson    *float64 `json:"pearson"`
		N          int      `json:"n"`
	}{c.WeatherVar, c.Pollutant, jsonNum(c.Pearson), c.N})
}

func jsonNum(v float64) *float64 {
	if models.IsMissing(v) {
		return nil
	}
	return &v
}

// Result is the full analysis output for one run.
type Result struct {
	City         string        `json:"city"`
	Rows         int           `json:"rows"`
	StartDate    string        `json:"start_date,omitempty"`
	EndDate      string        `json:"end_date,omitempty"`
	Summaries    []Summary     `json:"summaries"`
	Correlations []Correlation `json:"correlations"`
	GeneratedAt  time.Time     `json:"generated_at"`
}

// Run analyzes the merged dataset.
func Run(merged []models.MergedRecord) *Result {
	result := &Result{
		Rows:        len(merged),
		GeneratedAt: time.Now().UTC(),
	}
	if len(merged) > 0 {
		result.City = merged[0].City
		result.StartDate = merged[0].Date.Format(models.DateLayout)
		result.EndDate = merged[len(merged)-1].Date.Format(models.DateLayout)
	}

	vars := append(append([]string{}, models.WeatherVars...), models.Pollutants...)
	for _, name := range vars {
		result.Summaries = append(result.Summaries, summarize(name, merged))
	}

	for _, wv := range models.WeatherVars {
		for _, p := range models.Pollutants {
			result.Correlations = append(result.Correlations, correlate(wv, p, merged))
		}
	}

	return result
}

// summarize computes the NaN-aware summary of one variable.
func summarize(name string, merged []models.MergedRecord) Summary {
	var vals []float64
	for i := range merged {
		if v := merged[i].Value(name); !models.IsMissing(v) {
			vals = append(vals, v)
		}
	}

	s := Summary{Variable: name, Count: len(vals)}
	if len(vals) == 0 {
		s.Mean, s.Std, s.Min, s.Max = models.Missing(), models.Missing(), models.Missing(), models.Missing()
		return s
	}

	s.Mean = stat.Mean(vals, nil)
	if len(vals) > 1 {
		s.Std = stat.StdDev(vals, nil)
	}
	s.Min, s.Max = vals[0], vals[0]
	for _, v := range vals[1:] {
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	return s
}

// correlate computes the Pearson correlation between two variables over the
// rows where both are present. Fewer than three complete pairs yields NaN.
func correlate(weatherVar, pollutant string, merged []models.MergedRecord) Correlation {
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

	c := Correlation{WeatherVar: weatherVar, Pollutant: pollutant, N: len(xs)}
	if len(xs) < 3 {
		c.Pearson = models.Missing()
		return c
	}
	c.Pearson = stat.Correlation(xs, ys, nil)
	return c
}
