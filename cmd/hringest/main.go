// cmd/hringest/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/smartwage/hr-ingress/pkg/cleaner"
	"github.com/smartwage/hr-ingress/pkg/config"
	"github.com/smartwage/hr-ingress/pkg/ingest"
	"github.com/smartwage/hr-ingress/pkg/mapper"
	"github.com/smartwage/hr-ingress/pkg/model"
	"github.com/smartwage/hr-ingress/pkg/store"
	"github.com/smartwage/hr-ingress/pkg/validator"
)

var (
	tenantID  string
	actorID   string
	parallel  int
	batchSize int
	threshold float64
	outputDir string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "hringest",
	Short: "Bulk CSV ingestion for tenant HR data",
	Long: `hringest ingests customer CSV uploads into the HR graph store.

Each run maps the file's headers onto a canonical schema, cleans and
validates every row, persists the valid rows in batches, and leaves
three artifacts behind: a success CSV with assigned identifiers, an
errors CSV with per-row reasons, and a plain-text summary.`,
}

// importCmd bulk-creates employees from a CSV file
var importCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Bulk-create employees from a CSV file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd.Context(), model.OpEmployeeCreate, args[0])
	},
}

// reassignCmd bulk-updates manager relationships from a CSV file
var reassignCmd = &cobra.Command{
	Use:   "reassign <file.csv>",
	Short: "Bulk-reassign employee managers from a CSV file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd.Context(), model.OpManagerUpdate, args[0])
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&tenantID, "tenant", "", "Tenant (employer) identifier")
	rootCmd.PersistentFlags().StringVar(&actorID, "actor", "", "Identifier of the person running the upload")
	rootCmd.PersistentFlags().IntVar(&parallel, "parallel", 0, "Concurrent batch groups (0 uses the configured value)")
	rootCmd.PersistentFlags().IntVar(&batchSize, "batch-size", 0, "Records per persistence group (0 uses the configured value)")
	rootCmd.PersistentFlags().Float64Var(&threshold, "threshold", 0, "Fuzzy header match threshold in (0,1] (0 uses the configured value)")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "", "Directory for run artifacts (empty uses the configured value)")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(reassignCmd)
}

func runOperation(ctx context.Context, op model.Operation, file string) error {
	// A .env file is optional; the environment alone is fine.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := buildLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	applyFlagOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flag override: %w", err)
	}

	// SIGINT stops the run after the in-flight batch.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.NewPostgresStore(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to connect to store: %w", err)
	}
	defer st.Close()

	pipeline, err := buildPipeline(cfg, st, logger)
	if err != nil {
		return err
	}

	summary, err := pipeline.Run(ctx, ingest.Params{
		TenantID:  tenantID,
		ActorID:   actorID,
		FilePath:  file,
		Operation: op,
	})
	if err != nil {
		if summary != nil && summary.Artifacts.Summary != "" {
			fmt.Fprintf(os.Stderr, "Run aborted; see %s\n", summary.Artifacts.Summary)
		}
		return err
	}

	fmt.Printf("Run %s finished: %d/%d rows persisted\n",
		summary.OperationID, summary.PersistedRows, summary.TotalRows)
	fmt.Printf("Artifacts:\n  %s\n  %s\n  %s\n",
		summary.Artifacts.SuccessCSV,
		summary.Artifacts.ErrorsCSV,
		summary.Artifacts.Summary)
	if summary.Cancelled {
		fmt.Println("Run was cancelled before all batches were attempted.")
	}
	return nil
}

// applyFlagOverrides lets command-line flags win over the environment.
func applyFlagOverrides(cfg *config.Config) {
	if parallel > 0 {
		cfg.Parallelism = parallel
	}
	if batchSize > 0 {
		cfg.BatchSize = batchSize
	}
	if threshold > 0 {
		cfg.MatchThreshold = threshold
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
}

func buildPipeline(cfg *config.Config, st store.Store, logger *zap.Logger) (*ingest.Pipeline, error) {
	m, err := mapper.NewMapper(cfg.MatchThreshold, logger)
	if err != nil {
		return nil, err
	}
	c, err := cleaner.NewFieldCleaner(logger)
	if err != nil {
		return nil, err
	}
	v, err := validator.NewRecordValidator(st, logger)
	if err != nil {
		return nil, err
	}
	w, err := ingest.NewBatchWriter(logger)
	if err != nil {
		return nil, err
	}
	w = w.WithBatchSize(cfg.BatchSize).
		WithRetries(cfg.GroupRetries).
		WithBackoff(cfg.RetryBackoff).
		WithTimeout(cfg.GroupTimeout).
		WithParallelism(cfg.Parallelism)

	r, err := ingest.NewReporter(cfg.OutputDir, logger)
	if err != nil {
		return nil, err
	}

	return ingest.NewPipeline(m, c, v, w, r, st, cfg.MaxRows, logger)
}

func buildLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.LogFormat == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
