package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// AppConfig carries all process configuration. Upstream endpoints and the
// aggregation policy constants are explicit here so nothing in the pipeline
// reads global state.
type AppConfig struct {
	Port        string
	HTTPTimeout time.Duration

	// Upstream endpoints. Empty provider/geocoding URLs fall back to the
	// public services; the records service has no public default.
	ArchiveBaseURL   string
	ForecastBaseURL  string
	GeocodingBaseURL string
	RecordsBaseURL   string

	// Aggregation policy.
	ArchiveLagDays int
	MaxRangeDays   int

	// SyncInterval controls the periodic records re-sync; 0 disables it.
	SyncInterval time.Duration
}

// fileConfig is the optional YAML overlay pointed at by WEATHER_CONFIG.
type fileConfig struct {
	Providers struct {
		ArchiveURL  string `yaml:"archiveUrl"`
		ForecastURL string `yaml:"forecastUrl"`
	} `yaml:"providers"`
	Geocoding struct {
		URL string `yaml:"url"`
	} `yaml:"geocoding"`
	Records struct {
		URL string `yaml:"url"`
	} `yaml:"records"`
}

// Load reads configuration from the environment with sensible defaults,
// applying the optional YAML file on top.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "8080")

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "15s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	cfg.ArchiveBaseURL = os.Getenv("ARCHIVE_BASE_URL")
	cfg.ForecastBaseURL = os.Getenv("FORECAST_BASE_URL")
	cfg.GeocodingBaseURL = os.Getenv("GEOCODING_BASE_URL")
	cfg.RecordsBaseURL = os.Getenv("RECORDS_BASE_URL")

	cfg.ArchiveLagDays = getenvInt("ARCHIVE_LAG_DAYS", 4)
	cfg.MaxRangeDays = getenvInt("MAX_RANGE_DAYS", 30)

	syncStr := getenvDefault("SYNC_INTERVAL", "10m")
	syncInterval, err := time.ParseDuration(syncStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_INTERVAL: %w", err)
	}
	cfg.SyncInterval = syncInterval

	if path := os.Getenv("WEATHER_CONFIG"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	if cfg.RecordsBaseURL == "" {
		return nil, fmt.Errorf("RECORDS_BASE_URL is required")
	}

	return cfg, nil
}

func (c *AppConfig) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if fc.Providers.ArchiveURL != "" {
		c.ArchiveBaseURL = fc.Providers.ArchiveURL
	}
	if fc.Providers.ForecastURL != "" {
		c.ForecastBaseURL = fc.Providers.ForecastURL
	}
	if fc.Geocoding.URL != "" {
		c.GeocodingBaseURL = fc.Geocoding.URL
	}
	if fc.Records.URL != "" {
		c.RecordsBaseURL = fc.Records.URL
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
