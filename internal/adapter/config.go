package adapter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Storage StorageConfig `mapstructure:"storage"`
	Tracker TrackerConfig `mapstructure:"tracker"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Viewer  ViewerConfig  `mapstructure:"viewer"`
}

// APIConfig holds the catalogue API client configuration
type APIConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxRetries      int           `mapstructure:"max_retries"`
	RetryDelay      time.Duration `mapstructure:"retry_delay"`
	RateLimit       float64       `mapstructure:"rate_limit"` // requests per second, 0 = unlimited
	Burst           int           `mapstructure:"burst"`
	BreakerFailures uint32        `mapstructure:"breaker_failures"`
	BreakerTimeout  time.Duration `mapstructure:"breaker_timeout"`
}

// StorageConfig selects the durable key/value backend
type StorageConfig struct {
	Backend     string        `mapstructure:"backend"` // "bolt", "redis" or "memory"
	Dir         string        `mapstructure:"dir"`     // bolt
	RedisAddr   string        `mapstructure:"redis_addr"`
	RedisDB     int           `mapstructure:"redis_db"`
	RedisPrefix string        `mapstructure:"redis_prefix"`
	RedisTTL    time.Duration `mapstructure:"redis_ttl"` // 0 = keep forever
}

// TrackerConfig holds the access ranking limits
type TrackerConfig struct {
	MaxItemsPerType int `mapstructure:"max_items_per_type"`
	MaxTotalItems   int `mapstructure:"max_total_items"`
	GroupedLimit    int `mapstructure:"grouped_limit"`
}

// CacheConfig holds catalogue cache behaviour
type CacheConfig struct {
	DedupeInflight bool `mapstructure:"dedupe_inflight"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// MetricsConfig holds the Prometheus endpoint configuration
type MetricsConfig struct {
	Addr string `mapstructure:"addr"` // empty disables the endpoint
}

// ViewerConfig selects the program that opens material documents
type ViewerConfig struct {
	Command string   `mapstructure:"command"` // empty = system default
	Args    []string `mapstructure:"args"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:         "http://localhost:8080/api",
			Timeout:         60 * time.Second,
			MaxRetries:      3,
			RetryDelay:      500 * time.Millisecond,
			RateLimit:       10,
			Burst:           20,
			BreakerFailures: 5,
			BreakerTimeout:  30 * time.Second,
		},
		Storage: StorageConfig{
			Backend:     "bolt",
			Dir:         defaultDataPath(),
			RedisAddr:   "localhost:6379",
			RedisPrefix: "shelf:",
		},
		Tracker: TrackerConfig{
			MaxItemsPerType: 10,
			MaxTotalItems:   30,
			GroupedLimit:    6,
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "shelf", "shelf.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "shelf", "shelf.log")
	}
}

// defaultDataPath returns the default durable store directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "shelf", "data")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "shelf", "data")
	}
}

// DefaultConfigDir returns the default config directory for the current OS
func DefaultConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "shelf")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "shelf")
	}
}

// newViper registers every key with its default so environment
// overrides (SHELF_API_BASE_URL, SHELF_STORAGE_BACKEND, ...) apply.
func newViper(defaults *Config) *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("SHELF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("api.base_url", defaults.API.BaseURL)
	v.SetDefault("api.timeout", defaults.API.Timeout)
	v.SetDefault("api.max_retries", defaults.API.MaxRetries)
	v.SetDefault("api.retry_delay", defaults.API.RetryDelay)
	v.SetDefault("api.rate_limit", defaults.API.RateLimit)
	v.SetDefault("api.burst", defaults.API.Burst)
	v.SetDefault("api.breaker_failures", defaults.API.BreakerFailures)
	v.SetDefault("api.breaker_timeout", defaults.API.BreakerTimeout)

	v.SetDefault("storage.backend", defaults.Storage.Backend)
	v.SetDefault("storage.dir", defaults.Storage.Dir)
	v.SetDefault("storage.redis_addr", defaults.Storage.RedisAddr)
	v.SetDefault("storage.redis_db", defaults.Storage.RedisDB)
	v.SetDefault("storage.redis_prefix", defaults.Storage.RedisPrefix)
	v.SetDefault("storage.redis_ttl", defaults.Storage.RedisTTL)

	v.SetDefault("tracker.max_items_per_type", defaults.Tracker.MaxItemsPerType)
	v.SetDefault("tracker.max_total_items", defaults.Tracker.MaxTotalItems)
	v.SetDefault("tracker.grouped_limit", defaults.Tracker.GroupedLimit)

	v.SetDefault("cache.dedupe_inflight", defaults.Cache.DedupeInflight)

	v.SetDefault("logging.file", defaults.Logging.File)
	v.SetDefault("logging.level", defaults.Logging.Level)

	v.SetDefault("metrics.addr", defaults.Metrics.Addr)

	v.SetDefault("viewer.command", defaults.Viewer.Command)
	v.SetDefault("viewer.args", defaults.Viewer.Args)
	return v
}

// LoadConfig loads configuration from file and environment.
// An empty configFile searches the default config directory, then ".".
func LoadConfig(configFile string) (*Config, error) {
	v := newViper(DefaultConfig())

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(DefaultConfigDir())
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	cfg.Storage.Dir = ExpandPath(cfg.Storage.Dir)
	cfg.Logging.File = ExpandPath(cfg.Logging.File)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig writes cfg as YAML. An empty configFile writes config.yaml
// in the default config directory.
func SaveConfig(cfg *Config, configFile string) error {
	if configFile == "" {
		configFile = filepath.Join(DefaultConfigDir(), "config.yaml")
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.Set("api.base_url", cfg.API.BaseURL)
	v.Set("api.timeout", cfg.API.Timeout.String())
	v.Set("api.max_retries", cfg.API.MaxRetries)
	v.Set("api.retry_delay", cfg.API.RetryDelay.String())
	v.Set("api.rate_limit", cfg.API.RateLimit)
	v.Set("api.burst", cfg.API.Burst)
	v.Set("api.breaker_failures", cfg.API.BreakerFailures)
	v.Set("api.breaker_timeout", cfg.API.BreakerTimeout.String())

	v.Set("storage.backend", cfg.Storage.Backend)
	v.Set("storage.dir", cfg.Storage.Dir)
	v.Set("storage.redis_addr", cfg.Storage.RedisAddr)
	v.Set("storage.redis_db", cfg.Storage.RedisDB)
	v.Set("storage.redis_prefix", cfg.Storage.RedisPrefix)
	v.Set("storage.redis_ttl", cfg.Storage.RedisTTL.String())

	v.Set("tracker.max_items_per_type", cfg.Tracker.MaxItemsPerType)
	v.Set("tracker.max_total_items", cfg.Tracker.MaxTotalItems)
	v.Set("tracker.grouped_limit", cfg.Tracker.GroupedLimit)

	v.Set("cache.dedupe_inflight", cfg.Cache.DedupeInflight)

	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)

	v.Set("metrics.addr", cfg.Metrics.Addr)

	v.Set("viewer.command", cfg.Viewer.Command)
	v.Set("viewer.args", cfg.Viewer.Args)

	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate rejects settings the application cannot start with.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}
	switch c.Storage.Backend {
	case "bolt", "redis", "memory":
	default:
		return fmt.Errorf("storage.backend must be bolt, redis or memory, got %q", c.Storage.Backend)
	}
	if c.Tracker.MaxItemsPerType < 1 || c.Tracker.MaxTotalItems < 1 || c.Tracker.GroupedLimit < 1 {
		return errors.New("tracker limits must be positive")
	}
	return nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
