package server

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the catalog service.
type Config struct {
	DataDir            string
	BindAddress        string
	Port               int
	LogLevel           string
	LogFormat          string
	HealthCheckTimeout time.Duration
	HealthPollInterval time.Duration
	Seed               bool // populate the dev skill vocabulary and sample data on startup
}

// LoadConfig loads service configuration from environment variables.
// A .env file is loaded if present but not required.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	port, err := envOrDefaultInt("CATALOG_PORT", 8080)
	if err != nil {
		return nil, err
	}
	checkTimeout, err := envOrDefaultDuration("CATALOG_HEALTH_CHECK_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}
	pollInterval, err := envOrDefaultDuration("CATALOG_HEALTH_POLL_INTERVAL", 60*time.Second)
	if err != nil {
		return nil, err
	}
	seed, err := envOrDefaultBool("CATALOG_SEED", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DataDir:            envOrDefault("CATALOG_DATA_DIR", "/data"),
		BindAddress:        envOrDefault("CATALOG_BIND_ADDRESS", "0.0.0.0"),
		Port:               port,
		LogLevel:           envOrDefault("CATALOG_LOG_LEVEL", "info"),
		LogFormat:          envOrDefault("CATALOG_LOG_FORMAT", "auto"),
		HealthCheckTimeout: checkTimeout,
		HealthPollInterval: pollInterval,
		Seed:               seed,
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validate catalog config: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("CATALOG_PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.DataDir == "" {
		return fmt.Errorf("CATALOG_DATA_DIR must not be empty")
	}
	if c.HealthCheckTimeout <= 0 {
		return fmt.Errorf("CATALOG_HEALTH_CHECK_TIMEOUT must be positive, got %s", c.HealthCheckTimeout)
	}
	if c.HealthPollInterval <= 0 {
		return fmt.Errorf("CATALOG_HEALTH_POLL_INTERVAL must be positive, got %s", c.HealthPollInterval)
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) (int, error) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
		}
		return n, nil
	}
	return fallback, nil
}

func envOrDefaultBool(key string, fallback bool) (bool, error) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, fmt.Errorf("%s must be a boolean: %w", key, err)
		}
		return b, nil
	}
	return fallback, nil
}

func envOrDefaultDuration(key string, fallback time.Duration) (time.Duration, error) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("%s must be a valid duration: %w", key, err)
		}
		return d, nil
	}
	return fallback, nil
}
