// cmd/hringest/main_test.go
package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartwage/hr-ingress/pkg/config"
)

func TestFlagsRegistered(t *testing.T) {
	for _, name := range []string{"tenant", "actor", "parallel", "batch-size", "threshold", "output-dir"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "flag --%s missing", name)
	}
	require.NotNil(t, rootCmd.Commands())
	names := make([]string, 0, 2)
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "import")
	assert.Contains(t, names, "reassign")
}

func TestApplyFlagOverrides(t *testing.T) {
	cfg := &config.Config{
		BatchSize:      100,
		MaxRows:        5000,
		MatchThreshold: 0.6,
		GroupTimeout:   30 * time.Second,
		Parallelism:    1,
		OutputDir:      "results",
	}

	batchSize = 250
	threshold = 0.8
	parallel = 4
	outputDir = "/tmp/out"
	defer func() {
		batchSize, threshold, parallel, outputDir = 0, 0, 0, ""
	}()

	applyFlagOverrides(cfg)
	assert.Equal(t, 250, cfg.BatchSize)
	assert.Equal(t, 0.8, cfg.MatchThreshold)
	assert.Equal(t, 4, cfg.Parallelism)
	assert.Equal(t, "/tmp/out", cfg.OutputDir)
}

func TestApplyFlagOverridesZeroValuesKeepConfig(t *testing.T) {
	cfg := &config.Config{BatchSize: 100, MatchThreshold: 0.6, Parallelism: 2, OutputDir: "results"}

	applyFlagOverrides(cfg)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 0.6, cfg.MatchThreshold)
	assert.Equal(t, 2, cfg.Parallelism)
	assert.Equal(t, "results", cfg.OutputDir)
}
