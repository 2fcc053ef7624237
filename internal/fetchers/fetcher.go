package fetchers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"airmet/internal/config"
	"airmet/internal/logger"
	"airmet/internal/models"
)

// DataFetcher handles fetching data from both external sources
type DataFetcher struct {
	client *resty.Client
	log    *logger.Logger
}

// NewDataFetcher creates a new data fetcher instance
func NewDataFetcher(log *logger.Logger) *DataFetcher {
	client := resty.New()
	client.SetTimeout(60 * time.Second)
	client.SetRetryCount(3)
	client.SetRetryWaitTime(2 * time.Second)
	client.SetRetryMaxWaitTime(30 * time.Second)
	client.AddRetryCondition(func(r *resty.Response, err error) bool {
		if err != nil {
			return true
		}
		switch r.StatusCode() {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
		return false
	})

	if log == nil {
		log = logger.Global()
	}

	return &DataFetcher{
		client: client,
		log:    log.WithComponent("fetchers"),
	}
}

// FetchAll fetches raw weather and air-quality data for the configured city
// and date range. The two sources share no state and are fetched
// concurrently; either failure aborts the run.
func (f *DataFetcher) FetchAll(ctx context.Context, cfg *config.Config) (*models.SourceData, error) {
	start, err := models.ParseDate(cfg.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start date: %w", err)
	}
	end, err := models.ParseDate(cfg.EndDate)
	if err != nil {
		return nil, fmt.Errorf("invalid end date: %w", err)
	}

	f.log.Info("Starting data fetch from both sources", map[string]interface{}{
		"city":  cfg.City,
		"start": cfg.StartDate,
		"end":   cfg.EndDate,
	})

	weatherChan := make(chan []models.WeatherRecord, 1)
	airChan := make(chan []models.AirQualityRecord, 1)
	errChan := make(chan error, 2)

	go func() {
		recs, err := f.FetchWeather(ctx, cfg.OpenMeteoURL, cfg.Latitude, cfg.Longitude, start, end)
		if err != nil {
			errChan <- err
			return
		}
		weatherChan <- recs
	}()

	go func() {
		recs, err := f.fetchAirQualitySource(ctx, cfg, start, end)
		if err != nil {
			errChan <- err
			return
		}
		airChan <- recs
	}()

	data := &models.SourceData{FetchedAt: time.Now().UTC()}
	for completed := 0; completed < 2; completed++ {
		select {
		case recs := <-weatherChan:
			data.Weather = recs
		case recs := <-airChan:
			data.AirQuality = recs
		case err := <-errChan:
			return nil, err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.log.Info("Data fetch completed", map[string]interface{}{
		"weather_rows":     len(data.Weather),
		"air_quality_rows": len(data.AirQuality),
	})
	return data, nil
}

// fetchAirQualitySource picks the CSV file or the OpenAQ API depending on
// configuration. Both paths yield the same wide record type.
func (f *DataFetcher) fetchAirQualitySource(ctx context.Context, cfg *config.Config, start, end time.Time) ([]models.AirQualityRecord, error) {
	if cfg.AirQualityCSV != "" {
		f.log.Infof("Loading air-quality data from CSV file %s", cfg.AirQualityCSV)
		return LoadAirQualityCSV(cfg.AirQualityCSV, cfg.City)
	}
	return f.FetchAirQuality(ctx, cfg, start, end)
}
