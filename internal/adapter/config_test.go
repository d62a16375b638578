package adapter

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	def := DefaultConfig()
	if cfg.API.BaseURL != def.API.BaseURL || cfg.API.Timeout != def.API.Timeout {
		t.Fatalf("expected default api config, got %+v", cfg.API)
	}
	if cfg.Tracker.MaxItemsPerType != 10 || cfg.Tracker.MaxTotalItems != 30 || cfg.Tracker.GroupedLimit != 6 {
		t.Fatalf("expected default tracker limits, got %+v", cfg.Tracker)
	}
	if cfg.Cache.DedupeInflight {
		t.Fatal("expected in-flight dedup off by default")
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `api:
  base_url: https://materials.example/api
  retry_delay: 250ms
storage:
  backend: redis
cache:
  dedupe_inflight: true
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SHELF_TRACKER_MAX_TOTAL_ITEMS", "12")
	t.Setenv("SHELF_STORAGE_REDIS_ADDR", "cache:6380")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.API.BaseURL != "https://materials.example/api" {
		t.Fatalf("unexpected base url %q", cfg.API.BaseURL)
	}
	if cfg.API.RetryDelay != 250*time.Millisecond {
		t.Fatalf("expected 250ms, got %v", cfg.API.RetryDelay)
	}
	if cfg.Storage.Backend != "redis" || cfg.Storage.RedisAddr != "cache:6380" {
		t.Fatalf("unexpected storage config %+v", cfg.Storage)
	}
	if cfg.Tracker.MaxTotalItems != 12 {
		t.Fatalf("expected env override 12, got %d", cfg.Tracker.MaxTotalItems)
	}
	if !cfg.Cache.DedupeInflight {
		t.Fatal("expected dedupe_inflight from file")
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for a missing explicit config file")
	}
}

func TestLoadConfigRejectsBadBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("storage:\n  backend: sqlite\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil || !strings.Contains(err.Error(), "storage.backend") {
		t.Fatalf("expected storage.backend error, got %v", err)
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.API.BaseURL = "https://materials.example/api"
	cfg.API.BreakerTimeout = 45 * time.Second
	cfg.Tracker.GroupedLimit = 4
	cfg.Metrics.Addr = ":9102"

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.API.BaseURL != cfg.API.BaseURL || loaded.API.BreakerTimeout != cfg.API.BreakerTimeout {
		t.Fatalf("api config did not round-trip: %+v", loaded.API)
	}
	if loaded.Tracker.GroupedLimit != 4 || loaded.Metrics.Addr != ":9102" {
		t.Fatalf("config did not round-trip: %+v", loaded)
	}
}

func TestSetupLoggerWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "shelf.log")
	logger, closer, err := SetupLogger(&LoggingConfig{File: path, Level: "debug"})
	if err != nil {
		t.Fatal(err)
	}
	logger.Debug("loaded", "key", "branches")
	closer.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var entry map[string]any
	if err := json.Unmarshal(data, &entry); err != nil {
		t.Fatalf("expected one JSON line, got %q: %v", data, err)
	}
	if entry["msg"] != "loaded" || entry["key"] != "branches" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"Error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
