// pkg/config/store.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// StoreConfig holds graph store connection parameters
type StoreConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	// Statement timeout
	StatementTimeout time.Duration
}

// LoadStoreConfig loads graph store configuration from environment variables
func LoadStoreConfig() (*StoreConfig, error) {
	user := os.Getenv("STORE_USER")
	if user == "" {
		return nil, errors.New("STORE_USER environment variable is required")
	}

	password := os.Getenv("STORE_PASSWORD")
	if password == "" {
		return nil, errors.New("STORE_PASSWORD environment variable is required")
	}

	database := os.Getenv("STORE_DB")
	if database == "" {
		return nil, errors.New("STORE_DB environment variable is required")
	}

	host := getEnv("STORE_HOST", "localhost")
	port := getEnvAsInt("STORE_PORT", 5432)

	cfg := &StoreConfig{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		Database: database,
		SSLMode:  getEnv("STORE_SSLMODE", "disable"),

		MaxOpenConns:     getEnvAsInt("STORE_MAX_OPEN_CONNS", 25),
		MaxIdleConns:     getEnvAsInt("STORE_MAX_IDLE_CONNS", 10),
		ConnMaxLifetime:  time.Duration(getEnvAsInt("STORE_CONN_MAX_LIFETIME_SECONDS", 1800)) * time.Second,
		ConnMaxIdleTime:  time.Duration(getEnvAsInt("STORE_CONN_MAX_IDLE_TIME_SECONDS", 600)) * time.Second,
		StatementTimeout: time.Duration(getEnvAsInt("STORE_STATEMENT_TIMEOUT_SECONDS", 300)) * time.Second,
	}

	return cfg, nil
}

// ConnectionString returns a formatted PostgreSQL connection string
func (c *StoreConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.Database,
		c.SSLMode,
	)
}
