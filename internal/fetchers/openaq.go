package fetchers

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"airmet/internal/config"
	"airmet/internal/models"
	"airmet/internal/reshape"
)

const openAQPageLimit = 100

// OpenAQ v3 response fragments. Only the fields the pipeline reads.
type oaMeta struct {
	Found json.RawMessage `json:"found"`
}

type oaLocation struct {
	ID int `json:"id"`
}

type oaSensor struct {
	ID        int `json:"id"`
	Parameter struct {
		Name string `json:"name"`
	} `json:"parameter"`
}

type oaDay struct {
	Value  *float64 `json:"value"`
	Period struct {
		DatetimeFrom struct {
			UTC string `json:"utc"`
		} `json:"datetimeFrom"`
	} `json:"period"`
}

type oaLocationsResponse struct {
	Meta    oaMeta       `json:"meta"`
	Results []oaLocation `json:"results"`
}

type oaSensorsResponse struct {
	Meta    oaMeta     `json:"meta"`
	Results []oaSensor `json:"results"`
}

type oaDaysResponse struct {
	Results []oaDay `json:"results"`
}

// FetchAirQuality fetches daily pollutant concentrations from the OpenAQ v3
// API: discover locations near the configured coordinates, pick up to N
// sensors per pollutant, fetch each sensor's daily series, and take the
// per-day median across sensors. The long-form series is pivoted to wide
// records keyed by date.
func (f *DataFetcher) FetchAirQuality(ctx context.Context, cfg *config.Config, start, end time.Time) ([]models.AirQualityRecord, error) {
	sensors, err := f.listSensors(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// pollutant -> date -> values from each sensor
	values := make(map[string]map[time.Time][]float64)

	for _, pollutant := range models.Pollutants {
		ids := sensors[pollutant]
		if len(ids) == 0 {
			f.log.Warnf("No OpenAQ sensors found for %s near %s", pollutant, cfg.City)
			continue
		}
		byDate := make(map[time.Time][]float64)
		for _, id := range ids {
			days, err := f.fetchSensorDays(ctx, cfg, id, start, end)
			if err != nil {
				return nil, err
			}
			for day, v := range days {
				byDate[day] = append(byDate[day], v)
			}
		}
		values[pollutant] = byDate
	}

	samples := medianSamples(values, cfg.City)
	return reshape.LongToWide(samples), nil
}

// listSensors returns up to SensorsPerPollutant sensor IDs per pollutant,
// walking the paginated location and sensor listings.
func (f *DataFetcher) listSensors(ctx context.Context, cfg *config.Config) (map[string][]int, error) {
	wanted := make(map[string]bool, len(models.Pollutants))
	bag := make(map[string][]int, len(models.Pollutants))
	for _, p := range models.Pollutants {
		wanted[p] = true
	}

	locations, err := f.findLocations(ctx, cfg)
	if err != nil {
		return nil, err
	}

	for _, loc := range locations {
		for page := 1; ; page++ {
			url := fmt.Sprintf("%s/locations/%d/sensors", cfg.OpenAQBaseURL, loc.ID)
			body, err := f.openAQGet(ctx, cfg, url, map[string]string{
				"limit": fmt.Sprintf("%d", openAQPageLimit),
				"page":  fmt.Sprintf("%d", page),
			})
			if err != nil {
				return nil, err
			}
			var payload oaSensorsResponse
			if err := json.Unmarshal(body, &payload); err != nil {
				return nil, &models.FetchError{Source: "openaq", URL: url, Err: fmt.Errorf("failed to parse sensors response: %w", err)}
			}
			if len(payload.Results) == 0 {
				break
			}
			for _, s := range payload.Results {
				p := s.Parameter.Name
				if wanted[p] && len(bag[p]) < cfg.SensorsPerPollutant {
					bag[p] = append(bag[p], s.ID)
				}
			}
		}
		if haveEnough(bag, cfg.SensorsPerPollutant) {
			break
		}
	}
	return bag, nil
}

// findLocations walks the paginated location listing near the configured
// coordinates.
func (f *DataFetcher) findLocations(ctx context.Context, cfg *config.Config) ([]oaLocation, error) {
	var results []oaLocation
	url := cfg.OpenAQBaseURL + "/locations"

	for page := 1; ; page++ {
		body, err := f.openAQGet(ctx, cfg, url, map[string]string{
			"coordinates": fmt.Sprintf("%.4f,%.4f", cfg.Latitude, cfg.Longitude),
			"radius":      fmt.Sprintf("%d", cfg.RadiusMeters),
			"limit":       fmt.Sprintf("%d", openAQPageLimit),
			"page":        fmt.Sprintf("%d", page),
			"order_by":    "id",
			"sort_order":  "asc",
		})
		if err != nil {
			return nil, err
		}
		var payload oaLocationsResponse
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, &models.FetchError{Source: "openaq", URL: url, Err: fmt.Errorf("failed to parse locations response: %w", err)}
		}
		if len(payload.Results) == 0 {
			break
		}
		results = append(results, payload.Results...)
	}

	f.log.Debugf("OpenAQ locations found: %d", len(results))
	return results, nil
}

// fetchSensorDays fetches one sensor's daily series and keys it by UTC day.
// Multiple entries for the same day keep the last value.
func (f *DataFetcher) fetchSensorDays(ctx context.Context, cfg *config.Config, sensorID int, start, end time.Time) (map[time.Time]float64, error) {
	url := fmt.Sprintf("%s/sensors/%d/days", cfg.OpenAQBaseURL, sensorID)
	days := make(map[time.Time]float64)

	for page := 1; ; page++ {
		body, err := f.openAQGet(ctx, cfg, url, map[string]string{
			"date_from": start.Format(models.DateLayout) + "T00:00:00Z",
			"date_to":   end.Format(models.DateLayout) + "T23:59:59Z",
			"limit":     "1000",
			"page":      fmt.Sprintf("%d", page),
		})
		if err != nil {
			return nil, err
		}
		var payload oaDaysResponse
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, &models.FetchError{Source: "openaq", URL: url, Err: fmt.Errorf("failed to parse days response: %w", err)}
		}
		if len(payload.Results) == 0 {
			break
		}
		for _, d := range payload.Results {
			if d.Value == nil {
				continue
			}
			ts, err := time.Parse(time.RFC3339, d.Period.DatetimeFrom.UTC)
			if err != nil {
				continue
			}
			days[models.Day(ts)] = *d.Value
		}
	}
	return days, nil
}

// openAQGet issues one GET against the OpenAQ API with the API-key header.
func (f *DataFetcher) openAQGet(ctx context.Context, cfg *config.Config, url string, params map[string]string) ([]byte, error) {
	req := f.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParams(params)
	if cfg.OpenAQAPIKey != "" {
		req.SetHeader("X-API-Key", cfg.OpenAQAPIKey)
	}

	resp, err := req.Get(url)
	if err != nil {
		return nil, &models.FetchError{Source: "openaq", URL: url, Err: err}
	}
	if resp.StatusCode() != 200 {
		return nil, &models.FetchError{Source: "openaq", URL: url, StatusCode: resp.StatusCode()}
	}
	return resp.Body(), nil
}

// medianSamples reduces per-sensor values to one long-form sample per
// (pollutant, day): the median across sensors.
func medianSamples(values map[string]map[time.Time][]float64, city string) []models.PollutantSample {
	var samples []models.PollutantSample
	for pollutant, byDate := range values {
		for day, vals := range byDate {
			samples = append(samples, models.PollutantSample{
				Date:      day,
				City:      city,
				Pollutant: pollutant,
				Value:     median(vals),
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

func median(vals []float64) float64 {
	if len(vals) == 0 {
		return models.Missing()
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

func haveEnough(bag map[string][]int, perPollutant int) bool {
	for _, p := range models.Pollutants {
		if len(bag[p]) < perPollutant {
			return false
		}
	}
	return true
}
