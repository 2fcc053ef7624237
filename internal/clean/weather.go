package clean

import (
	"sort"
	"time"

	"airmet/internal/models"
)

// Weather cleans a raw weather dataset: rows sorted by date and unique
// after dedup (duplicates collapse by mean), impossible values nulled,
// short gaps interpolated, outliers flagged. Rows with a zero date are the
// only rows rejected.
func Weather(raw []models.WeatherRecord) ([]models.WeatherRecord, models.CleanReport) {
	report := models.CleanReport{Dataset: "weather", RowsIn: len(raw)}

	// group duplicate dates
	groups := make(map[time.Time][]models.WeatherRecord)
	for _, r := range raw {
		if r.Date.IsZero() {
			report.RowsRejected++
			continue
		}
		d := models.Day(r.Date)
		groups[d] = append(groups[d], r)
	}

	recs := make([]models.WeatherRecord, 0, len(groups))
	for d, rows := range groups {
		rec := models.WeatherRecord{Date: d}
		if len(rows) == 1 {
			rec = rows[0]
			rec.Date = d
		} else {
			report.DuplicatesCollapsed += len(rows) - 1
			for _, name := range models.WeatherVars {
				col := make([]float64, len(rows))
				for i, row := range rows {
					col[i] = row.Value(name)
				}
				rec.SetValue(name, mean(col))
			}
			for _, row := range rows {
				rec.Flags = models.MergeFlags(rec.Flags, row.Flags)
			}
			rec.Flags = models.AddFlag(rec.Flags, FlagDeduped)
		}
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Date.Before(recs[j].Date) })

	// domain validation
	for i := range recs {
		r := &recs[i]
		if !models.IsMissing(r.WindSpeedMS) && r.WindSpeedMS < 0 {
			r.WindSpeedMS = models.Missing()
			r.Flags = models.AddFlag(r.Flags, FlagInvalid)
			report.ValuesNulled++
		}
		if !models.IsMissing(r.PrecipMM) && r.PrecipMM < 0 {
			r.PrecipMM = models.Missing()
			r.Flags = models.AddFlag(r.Flags, FlagInvalid)
			report.ValuesNulled++
		}
		if !models.IsMissing(r.RhumPct) && (r.RhumPct < 0 || r.RhumPct > 100) {
			r.RhumPct = models.Missing()
			r.Flags = models.AddFlag(r.Flags, FlagInvalid)
			report.ValuesNulled++
		}
	}

	// imputation and outlier flagging per variable
	dates := make([]time.Time, len(recs))
	for i, r := range recs {
		dates[i] = r.Date
	}
	for _, name := range models.WeatherVars {
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
