package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/clubkit/census-bot/internal/observability"
)

// Default settle delay when none is configured; clamped at use to the
// gate's [500ms, 10s] bounds either way.
const defaultUpdateDelayMs = 3000

// Config struct to hold the configuration settings
type Config struct {
	NATS          NATSConfig          `yaml:"nats"`
	Census        CensusConfig        `yaml:"census"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// NATSConfig holds NATS configuration.
type NATSConfig struct {
	URL string `yaml:"url"`
}

// CensusConfig holds the census module's settings. The watch list
// itself lives in its own file so censusctl can edit it without
// touching process configuration.
type CensusConfig struct {
	WatchListPath   string `yaml:"watch_list_path"`
	UpdateDelayMs   int    `yaml:"update_delay_ms"`
	RenamePerMinute int    `yaml:"rename_per_minute"`
	GatewayPrefix   string `yaml:"gateway_prefix"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	MetricsAddress string `yaml:"metrics_address"`
	Environment    string `yaml:"environment"`
}

// LoadConfig loads the configuration from a YAML file.
func LoadConfig(filename string) (*Config, error) {
	// Try reading configuration from the file first
	data, err := os.ReadFile(filename)
	if err != nil {
		// If the file is not found, try loading from environment variables
		return loadConfigFromEnv()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// --- OVERRIDE WITH ENV VARS IF PRESENT ---
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Observability.MetricsAddress = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	if v := os.Getenv("WATCH_LIST_PATH"); v != "" {
		cfg.Census.WatchListPath = v
	}
	if v := os.Getenv("UPDATE_DELAY_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Census.UpdateDelayMs = n
		}
	}
	if v := os.Getenv("RENAME_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Census.RenamePerMinute = n
		}
	}
	if v := os.Getenv("GATEWAY_PREFIX"); v != "" {
		cfg.Census.GatewayPrefix = v
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// loadConfigFromEnv loads the configuration from environment variables.
func loadConfigFromEnv() (*Config, error) {
	var cfg Config

	cfg.NATS.URL = os.Getenv("NATS_URL")
	if cfg.NATS.URL == "" {
		return nil, fmt.Errorf("NATS_URL environment variable not set")
	}

	cfg.Census.WatchListPath = os.Getenv("WATCH_LIST_PATH")
	if cfg.Census.WatchListPath == "" {
		return nil, fmt.Errorf("WATCH_LIST_PATH environment variable not set")
	}

	if v := os.Getenv("UPDATE_DELAY_MS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid UPDATE_DELAY_MS value: %v", err)
		}
		cfg.Census.UpdateDelayMs = n
	}
	if v := os.Getenv("RENAME_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid RENAME_PER_MINUTE value: %v", err)
		}
		cfg.Census.RenamePerMinute = n
	}
	cfg.Census.GatewayPrefix = os.Getenv("GATEWAY_PREFIX")

	cfg.Observability.MetricsAddress = os.Getenv("METRICS_ADDRESS") // optional; empty disables metrics
	cfg.Observability.Environment = os.Getenv("ENV")

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Census.UpdateDelayMs == 0 {
		cfg.Census.UpdateDelayMs = defaultUpdateDelayMs
	}
	if cfg.Census.RenamePerMinute == 0 {
		cfg.Census.RenamePerMinute = 30
	}
	if cfg.Census.GatewayPrefix == "" {
		cfg.Census.GatewayPrefix = "census.gateway"
	}
}

// ToObsConfig maps process configuration onto the observability bundle.
func ToObsConfig(appCfg *Config) observability.Config {
	return observability.Config{
		ServiceName:    "census-bot",
		Environment:    appCfg.Observability.Environment,
		MetricsAddress: appCfg.Observability.MetricsAddress,
	}
}
