package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"

	"airmet/internal/models"
)

// Config holds all configuration for one pipeline run.
type Config struct {
	// Location of the study city
	City      string  `env:"CITY,default=Rome"`
	Latitude  float64 `env:"LATITUDE,default=41.9028"`
	Longitude float64 `env:"LONGITUDE,default=12.4964"`

	// Inclusive date range of the study, YYYY-MM-DD
	StartDate string `env:"START_DATE,default=2024-01-01"`
	EndDate   string `env:"END_DATE,default=2024-12-31"`

	// Checkpoint storage
	DataDir     string `env:"DATA_DIR,default=./data"`
	StorageMode string `env:"STORAGE_MODE,default=local"`
	GCSBucket   string `env:"GCS_BUCKET"`

	// Weather source (Open-Meteo ERA5 archive)
	OpenMeteoURL string `env:"OPEN_METEO_URL,default=https://archive-api.open-meteo.com/v1/era5"`

	// Air-quality source. When AirQualityCSV is set the pipeline reads that
	// file instead of calling the OpenAQ API.
	OpenAQBaseURL       string `env:"OPENAQ_BASE_URL,default=https://api.openaq.org/v3"`
	OpenAQAPIKey        string `env:"OPENAQ_API_KEY"`
	AirQualityCSV       string `env:"AIR_QUALITY_CSV"`
	RadiusMeters        int    `env:"RADIUS_METERS,default=25000"`
	SensorsPerPollutant int    `env:"SENSORS_PER_POLLUTANT,default=3"`

	// Optional narrative section for the report; disabled when the key is empty
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	OpenAIModel  string `env:"OPENAI_MODEL,default=gpt-4o-mini"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogFormat string `env:"LOG_FORMAT,default=text"`
}

// Load loads configuration from environment variables and validates it.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the date range and storage settings.
func (c *Config) Validate() error {
	start, err := models.ParseDate(c.StartDate)
	if err != nil {
		return fmt.Errorf("invalid START_DATE %q: %w", c.StartDate, err)
	}
	end, err := models.ParseDate(c.EndDate)
	if err != nil {
		return fmt.Errorf("invalid END_DATE %q: %w", c.EndDate, err)
	}
	if end.Before(start) {
		return fmt.Errorf("END_DATE %s is before START_DATE %s", c.EndDate, c.StartDate)
	}
	if c.StorageMode != "local" && c.StorageMode != "gcs" {
		return fmt.Errorf("unsupported STORAGE_MODE %q", c.StorageMode)
	}
	if c.StorageMode == "gcs" && c.GCSBucket == "" {
		return fmt.Errorf("STORAGE_MODE=gcs requires GCS_BUCKET")
	}
	return nil
}
