// Package csvio reads and writes the pipeline's CSV checkpoint files.
// Missing numeric values are written as empty cells and read back as NaN.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"airmet/internal/models"
)

const flagSeparator = ";"

func formatValue(v float64) string {
	if models.IsMissing(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseValue(dataset, field, raw string, row int) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return models.Missing(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &models.ValidationError{
			Dataset: dataset,
			Row:     row,
			Field:   field,
			Value:   raw,
			Reason:  "not a number",
		}
	}
	return v, nil
}

func parseDateField(dataset, raw string, row int) (time.Time, error) {
	d, err := models.ParseDate(raw)
	if err != nil {
		return time.Time{}, &models.ValidationError{
			Dataset: dataset,
			Row:     row,
			Field:   "date",
			Value:   raw,
			Reason:  "not a calendar date",
		}
	}
	return d, nil
}

func joinFlags(flags []string) string {
	return strings.Join(flags, flagSeparator)
}

func splitFlags(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return strings.Split(s, flagSeparator)
}

// WriteWeather writes weather records with a header row.
func WriteWeather(w io.Writer, recs []models.WeatherRecord) error {
	cw := csv.NewWriter(w)
	header := append([]string{"date"}, models.WeatherVars...)
	header = append(header, "flags")
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range recs {
		row := []string{
			r.Date.Format(models.DateLayout),
			formatValue(r.TempC),
			formatValue(r.RhumPct),
			formatValue(r.WindSpeedMS),
			formatValue(r.PrecipMM),
			joinFlags(r.Flags),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadWeather reads weather records written by WriteWeather.
func ReadWeather(r io.Reader) ([]models.WeatherRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read weather CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	cols := columnIndex(rows[0])
	var recs []models.WeatherRecord
	for i, row := range rows[1:] {
		rowNum := i + 2
		d, err := parseDateField("weather", cell(row, cols["date"]), rowNum)
		if err != nil {
			return nil, err
		}
		rec := models.WeatherRecord{Date: d}
		for _, name := range models.WeatherVars {
			rec.SetValue(name, models.Missing())
		}
		for _, name := range models.WeatherVars {
			idx, ok := cols[name]
			if !ok {
				continue
			}
			v, err := parseValue("weather", name, cell(row, idx), rowNum)
			if err != nil {
				return nil, err
			}
			rec.SetValue(name, v)
		}
		if idx, ok := cols["flags"]; ok {
			rec.Flags = splitFlags(cell(row, idx))
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// WriteAirQuality writes wide-form air-quality records with a header row.
func WriteAirQuality(w io.Writer, recs []models.AirQualityRecord) error {
	cw := csv.NewWriter(w)
	header := append([]string{"date", "city"}, models.Pollutants...)
	header = append(header, "flags")
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range recs {
		row := []string{
			r.Date.Format(models.DateLayout),
			r.City,
			formatValue(r.PM25),
			formatValue(r.NO2),
			joinFlags(r.Flags),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadAirQuality reads wide-form air-quality records. The city and flags
// columns are optional.
func ReadAirQuality(r io.Reader) ([]models.AirQualityRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read air-quality CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	cols := columnIndex(rows[0])
	if _, ok := cols["date"]; !ok {
		return nil, &models.ValidationError{
			Dataset: "air_quality",
			Row:     1,
			Field:   "date",
			Reason:  "missing date column",
		}
	}
	var recs []models.AirQualityRecord
	for i, row := range rows[1:] {
		rowNum := i + 2
		d, err := models.ParseDate(cell(row, cols["date"]))
		if err != nil {
			return nil, &models.ValidationError{
				Dataset: "air_quality",
				Row:     rowNum,
				Field:   "date",
				Value:   cell(row, cols["date"]),
				Reason:  "not a calendar date",
			}
		}
		rec := models.AirQualityRecord{Date: d, PM25: models.Missing(), NO2: models.Missing()}
		if idx, ok := cols["city"]; ok {
			rec.City = strings.TrimSpace(cell(row, idx))
		}
		for _, name := range models.Pollutants {
			idx, ok := cols[name]
			if !ok {
				continue
			}
			v, err := parseValue("air_quality", name, cell(row, idx), rowNum)
			if err != nil {
				return nil, err
			}
			rec.SetValue(name, v)
		}
		if idx, ok := cols["flags"]; ok {
			rec.Flags = splitFlags(cell(row, idx))
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// WriteSamples writes long-form pollutant samples with a header row.
func WriteSamples(w io.Writer, samples []models.PollutantSample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "city", "pollutant", "value"}); err != nil {
		return err
	}
	for _, s := range samples {
		row := []string{
			s.Date.Format(models.DateLayout),
			s.City,
			s.Pollutant,
			formatValue(s.Value),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadSamples reads long-form pollutant samples written by WriteSamples.
func ReadSamples(r io.Reader) ([]models.PollutantSample, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read pollutant samples CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	cols := columnIndex(rows[0])
	var samples []models.PollutantSample
	for i, row := range rows[1:] {
		rowNum := i + 2
		d, err := models.ParseDate(cell(row, cols["date"]))
		if err != nil {
			return nil, &models.ValidationError{
				Dataset: "air_quality",
				Row:     rowNum,
				Field:   "date",
				Value:   cell(row, cols["date"]),
				Reason:  "not a calendar date",
			}
		}
		v, err := parseValue("air_quality", "value", cell(row, cols["value"]), rowNum)
		if err != nil {
			return nil, err
		}
		s := models.PollutantSample{Date: d, Value: v}
		if idx, ok := cols["city"]; ok {
			s.City = strings.TrimSpace(cell(row, idx))
		}
		if idx, ok := cols["pollutant"]; ok {
			s.Pollutant = strings.TrimSpace(cell(row, idx))
		}
		samples = append(samples, s)
	}
	return samples, nil
}

// WriteMerged writes the merged tidy dataset with a header row.
func WriteMerged(w io.Writer, recs []models.MergedRecord) error {
	cw := csv.NewWriter(w)
	header := append([]string{"date", "city"}, models.WeatherVars...)
	header = append(header, models.Pollutants...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range recs {
		row := []string{
			r.Date.Format(models.DateLayout),
			r.City,
			formatValue(r.TempC),
			formatValue(r.RhumPct),
			formatValue(r.WindSpeedMS),
			formatValue(r.PrecipMM),
			formatValue(r.PM25),
			formatValue(r.NO2),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadMerged reads the merged dataset written by WriteMerged.
func ReadMerged(r io.Reader) ([]models.MergedRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read merged CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	cols := columnIndex(rows[0])
	names := append(append([]string{}, models.WeatherVars...), models.Pollutants...)
	var recs []models.MergedRecord
	for i, row := range rows[1:] {
		rowNum := i + 2
		d, err := models.ParseDate(cell(row, cols["date"]))
		if err != nil {
			return nil, &models.ValidationError{
				Dataset: "merged",
				Row:     rowNum,
				Field:   "date",
				Value:   cell(row, cols["date"]),
				Reason:  "not a calendar date",
			}
		}
		rec := models.MergedRecord{Date: d}
		if idx, ok := cols["city"]; ok {
			rec.City = strings.TrimSpace(cell(row, idx))
		}
		for _, name := range names {
			idx, ok := cols[name]
			if !ok {
				continue
			}
			v, err := parseValue("merged", name, cell(row, idx), rowNum)
			if err != nil {
				return nil, err
			}
			switch name {
			case "temp_c":
				rec.TempC = v
			case "rhum_pct":
				rec.RhumPct = v
			case "wind_speed_ms":
				rec.WindSpeedMS = v
			case "precip_mm":
				rec.PrecipMM = v
			case "pm25":
				rec.PM25 = v
			case "no2":
				rec.NO2 = v
			}
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return cols
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
