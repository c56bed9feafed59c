package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "abc123")
	t.Setenv("HTTP_TIMEOUT", "")
	t.Setenv("COLLECT_INTERVAL", "")
	t.Setenv("LOCATION_PAUSE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.OpenWeatherAPIKey != "abc123" {
		t.Errorf("unexpected api key: %s", cfg.OpenWeatherAPIKey)
	}
	if cfg.HTTPTimeout != 10*time.Second {
		t.Errorf("expected 10s http timeout, got %s", cfg.HTTPTimeout)
	}
	if cfg.CollectInterval != 15*time.Minute {
		t.Errorf("expected 15m collect interval, got %s", cfg.CollectInterval)
	}
	if cfg.LocationPause != 2*time.Second {
		t.Errorf("expected 2s location pause, got %s", cfg.LocationPause)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
}

func TestLoadMissingKey(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "")
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.json"))

	if _, err := Load(); err == nil {
		t.Fatal("expected error when no credential is configured")
	}
}

func TestLoadKeyFromConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"openweather_api_key":"from-file"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("OPENWEATHER_API_KEY", "")
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OpenWeatherAPIKey != "from-file" {
		t.Errorf("expected key from config file, got %s", cfg.OpenWeatherAPIKey)
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "abc123")
	t.Setenv("COLLECT_INTERVAL", "not-a-duration")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid COLLECT_INTERVAL")
	}
}
