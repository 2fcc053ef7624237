// Package reshape converts the pollutant table between wide form (one
// column per pollutant) and tidy long form (pollutant, value pairs). The
// transform is lossless for non-null cells: WideToLong followed by
// LongToWide reproduces the original values exactly.
package reshape

import (
	"sort"
	"time"

	"airmet/internal/models"
)

// WideToLong flattens wide records into one sample per non-null
// (date, pollutant) cell. Null cells produce no sample.
func WideToLong(recs []models.AirQualityRecord) []models.PollutantSample {
	var samples []models.PollutantSample
	for _, r := range recs {
		for _, pollutant := range models.Pollutants {
			v := r.Value(pollutant)
			if models.IsMissing(v) {
				continue
			}
			samples = append(samples, models.PollutantSample{
				Date:      r.Date,
				City:      r.City,
				Pollutant: pollutant,
				Value:     v,
			})
		}
	}
	sort.Slice(samples, func(i, j int) bool {
		if !samples[i].Date.Equal(samples[j].Date) {
			return samples[i].Date.Before(samples[j].Date)
		}
		return samples[i].Pollutant < samples[j].Pollutant
	})
	return samples
}

// LongToWide pivots samples into one wide record per date. Pollutants with
// no sample on a date stay null. A duplicate (date, pollutant) sample
// overwrites the earlier one; cleaning handles duplicate policy.
func LongToWide(samples []models.PollutantSample) []models.AirQualityRecord {
	byDate := make(map[time.Time]*models.AirQualityRecord)
	for _, s := range samples {
		rec := byDate[s.Date]
		if rec == nil {
			rec = &models.AirQualityRecord{
				Date: s.Date,
				City: s.City,
				PM25: models.Missing(),
				NO2:  models.Missing(),
			}
			byDate[s.Date] = rec
		}
		if rec.City == "" {
			rec.City = s.City
		}
		rec.SetValue(s.Pollutant, s.Value)
	}

	recs := make([]models.AirQualityRecord, 0, len(byDate))
	for _, rec := range byDate {
		recs = append(recs, *rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Date.Before(recs[j].Date) })
	return recs
}
