// pkg/config/config_test.go
package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setStoreEnv(t *testing.T) {
	t.Helper()
	t.Setenv("STORE_USER", "ingress")
	t.Setenv("STORE_PASSWORD", "secret")
	t.Setenv("STORE_DB", "hr")
}

func TestLoadConfigDefaults(t *testing.T) {
	setStoreEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 5000, cfg.MaxRows)
	assert.Equal(t, 0.6, cfg.MatchThreshold)
	assert.Equal(t, 1, cfg.GroupRetries)
	assert.Equal(t, 1, cfg.Parallelism)
	assert.Equal(t, "results", cfg.OutputDir)
	assert.Equal(t, "localhost", cfg.Store.Host)
	assert.Equal(t, 5432, cfg.Store.Port)
}

func TestLoadConfigOverrides(t *testing.T) {
	setStoreEnv(t)
	t.Setenv("INGEST_BATCH_SIZE", "250")
	t.Setenv("INGEST_MATCH_THRESHOLD", "0.8")
	t.Setenv("INGEST_PARALLELISM", "4")
	t.Setenv("STORE_PORT", "6543")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 250, cfg.BatchSize)
	assert.Equal(t, 0.8, cfg.MatchThreshold)
	assert.Equal(t, 4, cfg.Parallelism)
	assert.Equal(t, 6543, cfg.Store.Port)
}

func TestLoadConfigMissingStoreCredentials(t *testing.T) {
	t.Setenv("STORE_USER", "")
	t.Setenv("STORE_PASSWORD", "secret")
	t.Setenv("STORE_DB", "hr")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORE_USER")
}

func TestValidateRejectsBadValues(t *testing.T) {
	setStoreEnv(t)

	tests := []struct {
		name  string
		key   string
		value string
		want  string
	}{
		{"zero batch size", "INGEST_BATCH_SIZE", "0", "batch size"},
		{"zero max rows", "INGEST_MAX_ROWS", "0", "max rows"},
		{"threshold above one", "INGEST_MATCH_THRESHOLD", "1.5", "match threshold"},
		{"zero parallelism", "INGEST_PARALLELISM", "0", "parallelism"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := LoadConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestStoreConnectionString(t *testing.T) {
	cfg := &StoreConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "ingress",
		Password: "secret",
		Database: "hr",
		SSLMode:  "require",
	}

	assert.Equal(t,
		"host=db.internal port=5433 user=ingress password=secret dbname=hr sslmode=require",
		cfg.ConnectionString())
}
