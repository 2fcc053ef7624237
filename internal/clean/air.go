package clean

import (
	"sort"
	"time"

	"airmet/internal/models"
)

// AirQuality cleans a raw air-quality dataset: rows sorted by date and
// unique after dedup (duplicates collapse by median, matching the
// median-across-sensors aggregation of the source), negative concentrations
// nulled, short gaps interpolated, outliers flagged.
func AirQuality(raw []models.AirQualityRecord) ([]models.AirQualityRecord, models.CleanReport) {
	report := models.CleanReport{Dataset: "air_quality", RowsIn: len(raw)}

	groups := make(map[time.Time][]models.AirQualityRecord)
	for _, r := range raw {
		if r.Date.IsZero() {
			report.RowsRejected++
			continue
		}
		d := models.Day(r.Date)
		groups[d] = append(groups[d], r)
	}

	recs := make([]models.AirQualityRecord, 0, len(groups))
	for d, rows := range groups {
		rec := models.AirQualityRecord{Date: d, PM25: models.Missing(), NO2: models.Missing()}
		if len(rows) == 1 {
			rec = rows[0]
			rec.Date = d
		} else {
			report.DuplicatesCollapsed += len(rows) - 1
			for _, name := range models.Pollutants {
				col := make([]float64, len(rows))
				for i, row := range rows {
					col[i] = row.Value(name)
				}
				rec.SetValue(name, median(col))
			}
			for _, row := range rows {
				if rec.City == "" {
					rec.City = row.City
				}
				rec.Flags = models.MergeFlags(rec.Flags, row.Flags)
			}
			rec.Flags = models.AddFlag(rec.Flags, FlagDeduped)
		}
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Date.Before(recs[j].Date) })

	for i := range recs {
		r := &recs[i]
		for _, name := range models.Pollutants {
			v := r.Value(name)
			if !models.IsMissing(v) && v < 0 {
				r.SetValue(name, models.Missing())
				r.Flags = models.AddFlag(r.Flags, FlagInvalid)
				report.ValuesNulled++
			}
		}
	}

	dates := make([]time.Time, len(recs))
	for i, r := range recs {
		dates[i] = r.Date
	}
	for _, name := range models.Pollutants {
		s := series{dates: dates, vals: make([]float64, len(recs))}
		for i := range recs {
			s.vals[i] = recs[i].Value(name)
		}

		for _, idx := range s.interpolate() {
			recs[idx].SetValue(name, s.vals[idx])
			recs[idx].Flags = models.AddFlag(recs[idx].Flags, FlagImputed)
			report.ValuesImputed++
		}

		for _, idx := range s.outliers() {
			recs[idx].Flags = models.AddFlag(recs[idx].Flags, FlagOutlier)
			report.OutliersFlagged++
		}
	}

	report.RowsOut = len(recs)
	return recs, report
}
