package models

import (
	"math"
	"sort"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used in every CSV checkpoint.
const DateLayout = "2006-01-02"

// Weather variable column names, in checkpoint column order.
var WeatherVars = []string{"temp_c", "rhum_pct", "wind_speed_ms", "precip_mm"}

// Pollutant column names, in checkpoint column order.
var Pollutants = []string{"pm25", "no2"}

// WeatherRecord is one day of weather observations for the configured city.
// Numeric fields use NaN for missing values.
type WeatherRecord struct {
	Date        time.Time
	TempC       float64
	RhumPct     float64
	WindSpeedMS float64
	PrecipMM    float64
	Flags       []string
}

// AirQualityRecord is one day of pollutant concentrations in wide form.
type AirQualityRecord struct {
	Date  time.Time
	City  string
	PM25  float64
	NO2   float64
	Flags []string
}

// PollutantSample is one (date, pollutant) observation in tidy long form.
type PollutantSample struct {
	Date      time.Time
	City      string
	Pollutant string
	Value     float64
}

// MergedRecord is the inner join of a WeatherRecord and an AirQualityRecord
// sharing the same date.
type MergedRecord struct {
	Date        time.Time
	City        string
	TempC       float64
	RhumPct     float64
	WindSpeedMS float64
	PrecipMM    float64
	PM25        float64
	NO2         float64
}

// SourceData holds the raw fetch output of both sources before cleaning.
type SourceData struct {
	Weather    []WeatherRecord
	AirQuality []AirQualityRecord
	FetchedAt  time.Time
}

// Missing returns the sentinel used for absent numeric values.
func Missing() float64 {
	return math.NaN()
}

// IsMissing reports whether v is the missing-value sentinel.
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// ParseDate parses a calendar date and normalizes it to UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// Day truncates a timestamp to UTC midnight so it can act as a join key.
func Day(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Value returns the named weather variable from r.
func (r *WeatherRecord) Value(name string) float64 {
	switch name {
	case "temp_c":
		return r.TempC
	case "rhum_pct":
		return r.RhumPct
	case "wind_speed_ms":
		return r.WindSpeedMS
	case "precip_mm":
		return r.PrecipMM
	}
	return Missing()
}

// SetValue sets the named weather variable on r.
func (r *WeatherRecord) SetValue(name string, v float64) {
	switch name {
	case "temp_c":
		r.TempC = v
	case "rhum_pct":
		r.RhumPct = v
	case "wind_speed_ms":
		r.WindSpeedMS = v
	case "precip_mm":
		r.PrecipMM = v
	}
}

// Value returns the named pollutant from r.
func (r *AirQualityRecord) Value(name string) float64 {
	switch name {
	case "pm25":
		return r.PM25
	case "no2":
		return r.NO2
	}
	return Missing()
}

// SetValue sets the named pollutant on r.
func (r *AirQualityRecord) SetValue(name string, v float64) {
	switch name {
	case "pm25":
		r.PM25 = v
	case "no2":
		r.NO2 = v
	}
}

// Value returns the named variable (weather or pollutant) from r.
func (r *MergedRecord) Value(name string) float64 {
	switch name {
	case "temp_c":
		return r.TempC
	case "rhum_pct":
		return r.RhumPct
	case "wind_speed_ms":
		return r.WindSpeedMS
	case "precip_mm":
		return r.PrecipMM
	case "pm25":
		return r.PM25
	case "no2":
		return r.NO2
	}
	return Missing()
}

// AddFlag appends flag to flags unless it is already present.
func AddFlag(flags []string, flag string) []string {
	for _, f := range flags {
		if f == flag {
			return flags
		}
	}
	flags = append(flags, flag)
	sort.Strings(flags)
	return flags
}

// MergeFlags unions two flag sets.
func MergeFlags(a, b []string) []string {
	out := append([]string(nil), a...)
	for _, f := range b {
		out = AddFlag(out, f)
	}
	return out
}
