// pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents the application configuration
type Config struct {
	// Target graph store connection
	Store *StoreConfig

	// Ingestion settings
	BatchSize      int
	MaxRows        int
	MatchThreshold float64
	GroupRetries   int
	RetryBackoff   time.Duration
	GroupTimeout   time.Duration
	Parallelism    int
	OutputDir      string

	// Logging
	LogLevel  string
	LogFormat string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		// Default values
		BatchSize:      getEnvAsInt("INGEST_BATCH_SIZE", 100),
		MaxRows:        getEnvAsInt("INGEST_MAX_ROWS", 5000),
		MatchThreshold: getEnvAsFloat("INGEST_MATCH_THRESHOLD", 0.6),
		GroupRetries:   getEnvAsInt("INGEST_GROUP_RETRIES", 1),
		RetryBackoff:   time.Duration(getEnvAsInt("INGEST_RETRY_BACKOFF_MS", 2000)) * time.Millisecond,
		GroupTimeout:   time.Duration(getEnvAsInt("INGEST_GROUP_TIMEOUT_MS", 30000)) * time.Millisecond,
		Parallelism:    getEnvAsInt("INGEST_PARALLELISM", 1), // 1 means strictly sequential batches
		OutputDir:      getEnv("INGEST_OUTPUT_DIR", "results"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
	}

	storeConfig, err := LoadStoreConfig()
	if err != nil {
		return nil, errors.New("failed to load store configuration: " + err.Error())
	}
	cfg.Store = storeConfig

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures all required configuration is present and valid
func (c *Config) Validate() error {
	if c.Store == nil {
		return errors.New("store configuration is required")
	}

	if c.BatchSize <= 0 {
		return errors.New("batch size must be positive")
	}

	if c.MaxRows <= 0 {
		return errors.New("max rows must be positive")
	}

	if c.MatchThreshold <= 0 || c.MatchThreshold > 1 {
		return fmt.Errorf("match threshold must be in (0, 1], got %g", c.MatchThreshold)
	}

	if c.GroupRetries < 0 {
		return errors.New("group retries cannot be negative")
	}

	if c.GroupTimeout <= 0 {
		return errors.New("group timeout must be positive")
	}

	if c.Parallelism <= 0 {
		return errors.New("parallelism must be positive")
	}

	if c.OutputDir == "" {
		return errors.New("output directory is required")
	}

	return nil
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}
