package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// AppConfig holds all runtime configuration for the collector service.
type AppConfig struct {
	// OpenWeatherAPIKey authenticates both upstream calls. Required.
	OpenWeatherAPIKey string

	// HTTPTimeout bounds each outbound API call.
	HTTPTimeout time.Duration

	// CollectInterval controls how often a full collection run is scheduled.
	CollectInterval time.Duration

	// LocationPause is the wait inserted after each location during a run,
	// to stay under the upstream rate limit.
	LocationPause time.Duration

	// DatabaseURL selects the Postgres store when set; otherwise the
	// in-memory store is used.
	DatabaseURL string

	// LocationsFile optionally overrides the built-in monitoring points.
	LocationsFile string

	// In-memory store retention.
	StoreMaxHistory int
	StoreMaxAge     time.Duration

	Port string
}

// Load reads configuration from environment with sensible defaults. The API
// key may alternatively come from a local config.json, matching the original
// deployment's fallback.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	if cfg.OpenWeatherAPIKey == "" {
		key, err := keyFromFile(getenvDefault("CONFIG_FILE", "config.json"))
		if err != nil {
			return nil, fmt.Errorf("OPENWEATHER_API_KEY is not set and no config file found: %w", err)
		}
		cfg.OpenWeatherAPIKey = key
	}
	if cfg.OpenWeatherAPIKey == "" {
		return nil, fmt.Errorf("OPENWEATHER_API_KEY is not configured")
	}

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.CollectInterval, err = getenvDuration("COLLECT_INTERVAL", "15m"); err != nil {
		return nil, err
	}
	if cfg.LocationPause, err = getenvDuration("LOCATION_PAUSE", "2s"); err != nil {
		return nil, err
	}
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", "24h"); err != nil {
		return nil, err
	}

	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 96)
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.LocationsFile = os.Getenv("LOCATIONS_FILE")
	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

func keyFromFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	var file struct {
		OpenWeatherAPIKey string `json:"openweather_api_key"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return "", fmt.Errorf("decode %s: %w", path, err)
	}
	return file.OpenWeatherAPIKey, nil
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

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
