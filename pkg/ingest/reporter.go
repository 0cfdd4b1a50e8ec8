// pkg/ingest/reporter.go
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/smartwage/hr-ingress/pkg/model"
)

// Reporter writes the three artifacts of a run: a success CSV, an
// errors CSV and a plain-text summary. Artifacts are written even when
// every record failed; a structural failure still gets a summary.
type Reporter struct {
	dir    string
	logger *zap.Logger
}

// NewReporter creates a reporter writing into dir, creating it if needed
func NewReporter(dir string, logger *zap.Logger) (*Reporter, error) {
	if dir == "" {
		return nil, errors.New("output directory cannot be empty")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &Reporter{
		dir:    dir,
		logger: logger.Named("reporter"),
	}, nil
}

// RunReport is everything the reporter needs to render one run.
type RunReport struct {
	Summary  *model.RunSummary
	Parsed   *ParsedFile
	Outcomes []model.ValidationOutcome
	Writes   []model.WriteOutcome
	Metrics  *RunMetrics
}

// Write renders all three artifacts and records their paths on the
// summary. Rows appear in both CSVs in original file order.
func (r *Reporter) Write(report *RunReport) error {
	s := report.Summary
	prefix := artifactPrefix(s)

	reasonByLine := make(map[int]string)
	for _, o := range report.Outcomes {
		if !o.Valid {
			reasonByLine[o.Line] = o.ReasonText()
		}
	}
	writeByLine := make(map[int]model.WriteOutcome)
	for _, w := range report.Writes {
		writeByLine[w.Line] = w
	}

	successPath := filepath.Join(r.dir, prefix+"_success.csv")
	if err := r.writeSuccessCSV(successPath, report, writeByLine); err != nil {
		return err
	}

	errorsPath := filepath.Join(r.dir, prefix+"_errors.csv")
	if err := r.writeErrorsCSV(errorsPath, report, reasonByLine, writeByLine); err != nil {
		return err
	}

	summaryPath := filepath.Join(r.dir, prefix+"_summary.txt")
	if err := os.WriteFile(summaryPath, []byte(renderSummary(s, report.Metrics)), 0o644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	s.Artifacts = model.ArtifactPaths{
		SuccessCSV: successPath,
		ErrorsCSV:  errorsPath,
		Summary:    summaryPath,
	}

	r.logger.Info("Wrote run artifacts",
		zap.String("success", successPath),
		zap.String("errors", errorsPath),
		zap.String("summary", summaryPath))
	return nil
}

// WriteFailureSummary writes a summary-only artifact for a run that
// aborted before persistence.
func (r *Reporter) WriteFailureSummary(s *model.RunSummary) error {
	summaryPath := filepath.Join(r.dir, artifactPrefix(s)+"_summary.txt")

	if err := os.WriteFile(summaryPath, []byte(renderSummary(s, nil)), 0o644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	s.Artifacts = model.ArtifactPaths{Summary: summaryPath}
	r.logger.Info("Wrote failure summary", zap.String("summary", summaryPath))
	return nil
}

func (r *Reporter) writeSuccessCSV(
	path string,
	report *RunReport,
	writeByLine map[int]model.WriteOutcome,
) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create success file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append(append([]string{}, report.Parsed.Headers...), "assigned_id")
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write success header: %w", err)
	}

	for _, rec := range report.Parsed.Records {
		o, ok := writeByLine[rec.Line]
		if !ok || o.Failed {
			continue
		}
		row := paddedCells(rec, len(report.Parsed.Headers))
		if err := w.Write(append(row, o.ID)); err != nil {
			return fmt.Errorf("failed to write success row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

func (r *Reporter) writeErrorsCSV(
	path string,
	report *RunReport,
	reasonByLine map[int]string,
	writeByLine map[int]model.WriteOutcome,
) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create errors file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append(append([]string{}, report.Parsed.Headers...), "error_reason")
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write errors header: %w", err)
	}

	for _, rec := range report.Parsed.Records {
		reason, invalid := reasonByLine[rec.Line]
		if !invalid {
			if o, ok := writeByLine[rec.Line]; ok && o.Failed {
				reason = o.Reason
			} else {
				continue
			}
		}
		row := paddedCells(rec, len(report.Parsed.Headers))
		if err := w.Write(append(row, reason)); err != nil {
			return fmt.Errorf("failed to write errors row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

// paddedCells returns the raw cells padded or truncated to the header width.
func paddedCells(rec model.RawRecord, width int) []string {
	row := make([]string, width)
	for i := 0; i < width; i++ {
		row[i] = rec.Cell(i)
	}
	return row
}

// artifactPrefix names a run's artifacts: <operation>_<timestamp>.
func artifactPrefix(s *model.RunSummary) string {
	return fmt.Sprintf("%s_%s", s.Operation, s.StartedAt.Format("20060102_150405"))
}

// renderSummary produces the plain-text run report. Metrics are
// optional; aborted runs have none.
func renderSummary(s *model.RunSummary, m *RunMetrics) string {
	var b strings.Builder

	fmt.Fprintf(&b, "HR Ingestion Run Report\n")
	fmt.Fprintf(&b, "=======================\n\n")
	fmt.Fprintf(&b, "Operation ID:  %s\n", s.OperationID)
	fmt.Fprintf(&b, "Operation:     %s\n", s.Operation)
	fmt.Fprintf(&b, "Tenant:        %s\n", s.TenantID)
	fmt.Fprintf(&b, "Requested by:  %s\n", s.ActorID)
	fmt.Fprintf(&b, "Source file:   %s\n", s.SourceFile)
	fmt.Fprintf(&b, "Started:       %s\n", s.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Finished:      %s\n", s.FinishedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Duration:      %s\n\n", s.Duration().Round(time.Millisecond))

	if s.StructuralError != "" {
		fmt.Fprintf(&b, "RUN ABORTED\n")
		fmt.Fprintf(&b, "-----------\n")
		fmt.Fprintf(&b, "%s\n", s.StructuralError)
		fmt.Fprintf(&b, "No records were persisted.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "Columns\n")
	fmt.Fprintf(&b, "-------\n")
	fmt.Fprintf(&b, "Columns mapped: %d", s.ColumnsMapped)
	if len(s.Mapped) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(s.Mapped, ", "))
	}
	fmt.Fprintf(&b, "\n\n")

	fmt.Fprintf(&b, "Rows\n")
	fmt.Fprintf(&b, "----\n")
	fmt.Fprintf(&b, "Total rows:     %d\n", s.TotalRows)
	fmt.Fprintf(&b, "Valid rows:     %d\n", s.ValidRows)
	fmt.Fprintf(&b, "Invalid rows:   %d\n", s.InvalidRows)
	fmt.Fprintf(&b, "Persisted:      %d\n", s.PersistedRows)
	fmt.Fprintf(&b, "Failed writes:  %d\n", s.FailedRows)
	fmt.Fprintf(&b, "Success rate:   %.1f%%\n\n", s.SuccessRate())

	if len(s.Batches) > 0 {
		fmt.Fprintf(&b, "Batches\n")
		fmt.Fprintf(&b, "-------\n")
		for _, batch := range s.Batches {
			fmt.Fprintf(&b, "Batch %d: attempted %d, succeeded %d, failed %d (%s)\n",
				batch.Index+1, batch.Attempted, batch.Succeeded, batch.Failed,
				batch.Duration.Round(time.Millisecond))
		}
		if m != nil {
			fmt.Fprintf(&b, "Average batch time: %s\n", m.AverageBatchDuration().Round(time.Millisecond))
			fmt.Fprintf(&b, "Throughput:         %.1f rows/s\n", m.Throughput())
		}
		fmt.Fprintf(&b, "\n")
	}

	if len(s.Unmapped) > 0 {
		fmt.Fprintf(&b, "Unmapped columns: %s\n", strings.Join(s.Unmapped, ", "))
	}
	if len(s.Shadowed) > 0 {
		fmt.Fprintf(&b, "Shadowed columns: %s\n", strings.Join(s.Shadowed, ", "))
	}
	if s.Cancelled {
		fmt.Fprintf(&b, "\nRun was cancelled before all batches were attempted.\n")
	}

	return b.String()
}
