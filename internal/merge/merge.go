// Package merge inner-joins the cleaned weather and air-quality datasets on
// their shared date key.
package merge

import (
	"sort"
	"time"

	"airmet/internal/models"
)

// Inner joins cleaned weather and air-quality records on date. The output
// holds one row per date present in both inputs; unmatched rows from either
// side are dropped and counted in the report, never silently.
func Inner(weather []models.WeatherRecord, air []models.AirQualityRecord) ([]models.MergedRecord, models.MergeReport) {
	report := models.MergeReport{}

	airByDate := make(map[time.Time]models.AirQualityRecord, len(air))
	for _, a := range air {
		airByDate[models.Day(a.Date)] = a
	}

	matched := make(map[time.Time]bool)
	var merged []models.MergedRecord
	for _, w := range weather {
		d := models.Day(w.Date)
		a, ok := airByDate[d]
		if !ok {
			report.DroppedWeather++
			report.UnmatchedWeather = append(report.UnmatchedWeather, d)
			continue
		}
		matched[d] = true
		merged = append(merged, models.MergedRecord{
			Date:        d,
			City:        a.City,
			TempC:       w.TempC,
			RhumPct:     w.RhumPct,
			WindSpeedMS: w.WindSpeedMS,
			PrecipMM:    w.PrecipMM,
			PM25:        a.PM25,
			NO2:         a.NO2,
		})
	}

	for _, a := range air {
		d := models.Day(a.Date)
		if !matched[d] {
			report.DroppedAir++
			report.UnmatchedAir = append(report.UnmatchedAir, d)
		}
	}

	sort.Slice(merged, func(i, j int) bool { return merged[i].Date.Before(merged[j].Date) })
	sort.Slice(report.UnmatchedWeather, func(i, j int) bool {
		return report.UnmatchedWeather[i].Before(report.UnmatchedWeather[j])
	})
	sort.Slice(report.UnmatchedAir, func(i, j int) bool {
		return report.UnmatchedAir[i].Before(report.UnmatchedAir[j])
	})

	report.RowsOut = len(merged)
	return merged, report
}
