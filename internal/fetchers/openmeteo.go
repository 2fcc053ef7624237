package fetchers

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"airmet/internal/models"
)

// weatherChunkDays is the widest date range requested in a single archive
// call. Longer study ranges are split, concatenated, and de-duplicated.
const weatherChunkDays = 180

// openMeteoResponse mirrors the hourly parallel arrays returned by the
// Open-Meteo ERA5 archive endpoint. Individual cells may be null.
type openMeteoResponse struct {
	Hourly struct {
		Time          []string   `json:"time"`
		Temperature2M []*float64 `json:"temperature_2m"`
		Humidity2M    []*float64 `json:"relative_humidity_2m"`
		WindSpeed10M  []*float64 `json:"wind_speed_10m"`
		Precipitation []*float64 `json:"precipitation"`
	} `json:"hourly"`
}

// FetchWeather fetches hourly ERA5 weather for the date range and aggregates
// it to one row per UTC day: mean temperature, humidity and wind speed,
// summed precipitation.
func (f *DataFetcher) FetchWeather(ctx context.Context, baseURL string, lat, lon float64, start, end time.Time) ([]models.WeatherRecord, error) {
	var all []models.WeatherRecord

	for chunkStart := start; !chunkStart.After(end); {
		chunkEnd := chunkStart.AddDate(0, 0, weatherChunkDays-1)
		if chunkEnd.After(end) {
			chunkEnd = end
		}

		recs, err := f.fetchWeatherChunk(ctx, baseURL, lat, lon, chunkStart, chunkEnd)
		if err != nil {
			return nil, err
		}
		all = append(all, recs...)

		chunkStart = chunkEnd.AddDate(0, 0, 1)
	}

	return dedupeByDate(all), nil
}

func (f *DataFetcher) fetchWeatherChunk(ctx context.Context, baseURL string, lat, lon float64, start, end time.Time) ([]models.WeatherRecord, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParams(map[string]string{
			"latitude":   fmt.Sprintf("%.4f", lat),
			"longitude":  fmt.Sprintf("%.4f", lon),
			"start_date": start.Format(models.DateLayout),
			"end_date":   end.Format(models.DateLayout),
			"hourly":     "temperature_2m,relative_humidity_2m,wind_speed_10m,precipitation",
			"timezone":   "UTC",
		}).
		Get(baseURL)

	if err != nil {
		return nil, &models.FetchError{Source: "open-meteo", URL: baseURL, Err: err}
	}
	if resp.StatusCode() != 200 {
		return nil, &models.FetchError{Source: "open-meteo", URL: baseURL, StatusCode: resp.StatusCode()}
	}

	var payload openMeteoResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, &models.FetchError{Source: "open-meteo", URL: baseURL, Err: fmt.Errorf("failed to parse response: %w", err)}
	}
	if len(payload.Hourly.Time) == 0 {
		return nil, &models.FetchError{Source: "open-meteo", URL: baseURL, Err: fmt.Errorf("no hourly data for %s..%s", start.Format(models.DateLayout), end.Format(models.DateLayout))}
	}

	return aggregateHourly(&payload)
}

// hourlyBucket accumulates one day of hourly samples.
type hourlyBucket struct {
	tempSum, tempN     float64
	rhumSum, rhumN     float64
	windSum, windN     float64
	precipSum, precipN float64
}

// aggregateHourly collapses the hourly arrays into daily records: means for
// temperature, humidity and wind, sum for precipitation. Null cells are
// skipped; a day with no valid samples for a variable gets NaN.
func aggregateHourly(payload *openMeteoResponse) ([]models.WeatherRecord, error) {
	buckets := make(map[time.Time]*hourlyBucket)

	for i, stamp := range payload.Hourly.Time {
		ts, err := time.Parse("2006-01-02T15:04", stamp)
		if err != nil {
			return nil, &models.FetchError{Source: "open-meteo", Err: fmt.Errorf("bad hourly timestamp %q: %w", stamp, err)}
		}
		day := models.Day(ts)
		b := buckets[day]
		if b == nil {
			b = &hourlyBucket{}
			buckets[day] = b
		}
		if v := at(payload.Hourly.Temperature2M, i); v != nil {
			b.tempSum += *v
			b.tempN++
		}
		if v := at(payload.Hourly.Humidity2M, i); v != nil {
			b.rhumSum += *v
			b.rhumN++
		}
		if v := at(payload.Hourly.WindSpeed10M, i); v != nil {
			b.windSum += *v
			b.windN++
		}
		if v := at(payload.Hourly.Precipitation, i); v != nil {
			b.precipSum += *v
			b.precipN++
		}
	}

	recs := make([]models.WeatherRecord, 0, len(buckets))
	for day, b := range buckets {
		rec := models.WeatherRecord{
			Date:        day,
			TempC:       meanOrMissing(b.tempSum, b.tempN),
			RhumPct:     meanOrMissing(b.rhumSum, b.rhumN),
			WindSpeedMS: meanOrMissing(b.windSum, b.windN),
			PrecipMM:    models.Missing(),
		}
		if b.precipN > 0 {
			rec.PrecipMM = b.precipSum
		}
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Date.Before(recs[j].Date) })
	return recs, nil
}

func at(vals []*float64, i int) *float64 {
	if i < len(vals) {
		return vals[i]
	}
	return nil
}

func meanOrMissing(sum, n float64) float64 {
	if n == 0 {
		return models.Missing()
	}
	return sum / n
}

// dedupeByDate drops duplicate dates produced by overlapping chunks,
// keeping the first occurrence.
func dedupeByDate(recs []models.WeatherRecord) []models.WeatherRecord {
	seen := make(map[time.Time]bool, len(recs))
	out := recs[:0]
	for _, r := range recs {
		if seen[r.Date] {
			continue
		}
		seen[r.Date] = true
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
