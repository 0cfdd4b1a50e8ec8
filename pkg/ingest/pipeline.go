// pkg/ingest/pipeline.go
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/smartwage/hr-ingress/pkg/cleaner"
	"github.com/smartwage/hr-ingress/pkg/mapper"
	"github.com/smartwage/hr-ingress/pkg/model"
	"github.com/smartwage/hr-ingress/pkg/store"
	"github.com/smartwage/hr-ingress/pkg/validator"
)

// ReportsTo is the relationship type linking an employee to their manager.
const ReportsTo = "REPORTS_TO"

// Params identifies one ingestion run.
type Params struct {
	TenantID  string
	ActorID   string
	FilePath  string
	Operation model.Operation
}

// Pipeline wires the mapper, cleaner, validator, batch writer and
// reporter into one run. A structural failure aborts before any write;
// everything after that point is per-record and never stops the run.
type Pipeline struct {
	mapper    *mapper.Mapper
	cleaner   *cleaner.FieldCleaner
	validator *validator.RecordValidator
	writer    *BatchWriter
	reporter  *Reporter
	store     store.Store
	logger    *zap.Logger
	maxRows   int
}

// NewPipeline assembles a pipeline from its stages
func NewPipeline(
	m *mapper.Mapper,
	c *cleaner.FieldCleaner,
	v *validator.RecordValidator,
	w *BatchWriter,
	r *Reporter,
	st store.Store,
	maxRows int,
	logger *zap.Logger,
) (*Pipeline, error) {
	if m == nil || c == nil || v == nil || w == nil || r == nil {
		return nil, errors.New("all pipeline stages are required")
	}
	if st == nil {
		return nil, errors.New("store cannot be nil")
	}
	if maxRows <= 0 {
		return nil, errors.New("max rows must be positive")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &Pipeline{
		mapper:    m,
		cleaner:   c,
		validator: v,
		writer:    w,
		reporter:  r,
		store:     st,
		maxRows:   maxRows,
		logger:    logger.Named("pipeline"),
	}, nil
}

// Run executes one ingestion run end to end and always leaves a
// summary artifact behind, aborted runs included.
func (p *Pipeline) Run(ctx context.Context, params Params) (*model.RunSummary, error) {
	schema, ok := model.SchemaFor(params.Operation)
	if !ok {
		return nil, fmt.Errorf("unknown operation %q", params.Operation)
	}
	if params.TenantID == "" {
		return nil, errors.New("tenant id is required")
	}
	if params.ActorID == "" {
		return nil, errors.New("actor id is required")
	}

	summary := &model.RunSummary{
		OperationID: uuid.New().String(),
		Operation:   params.Operation,
		TenantID:    params.TenantID,
		ActorID:     params.ActorID,
		SourceFile:  params.FilePath,
		StartedAt:   time.Now(),
	}

	logger := p.logger.With(
		zap.String("operation_id", summary.OperationID),
		zap.String("operation", string(params.Operation)),
		zap.String("tenant_id", params.TenantID))
	logger.Info("Starting ingestion run", zap.String("file", params.FilePath))

	metrics := NewRunMetrics(logger)

	parsed, err := ParseFile(params.FilePath, p.maxRows)
	if err != nil {
		return p.abort(summary, logger, err)
	}
	logger.Info("Parsed input file",
		zap.Int("rows", len(parsed.Records)),
		zap.Int("skipped_empty", parsed.SkippedEmpty))

	mapping, err := p.mapper.MapHeaders(parsed.Headers, schema)
	if err != nil {
		return p.abort(summary, logger, newStructuralError("mapping", err))
	}
	summary.Mapped = mapping.Fields()
	summary.ColumnsMapped = len(summary.Mapped)
	summary.Unmapped = mapping.Unmapped
	summary.Shadowed = mapping.Shadowed
	summary.TotalRows = len(parsed.Records)
	metrics.RecordRows(summary.TotalRows)

	cleaned := p.cleaner.CleanRecords(parsed.Records, mapping)
	applyDefaults(schema, cleaned)

	outcomes, err := p.validator.ValidateAll(ctx, params.TenantID, schema, cleaned)
	if err != nil {
		return p.abort(summary, logger, newStructuralError("validation", err))
	}

	var valid []model.CleanedRecord
	for i, o := range outcomes {
		if o.Valid {
			valid = append(valid, cleaned[i])
		}
	}
	summary.ValidRows = len(valid)
	summary.InvalidRows = summary.TotalRows - summary.ValidRows
	metrics.RecordValidation(summary.ValidRows, summary.InvalidRows)
	fieldErrs, recordErrs := 0, 0
	for _, o := range outcomes {
		for _, reason := range o.Reasons {
			if reason.Rule == model.RuleFormat {
				fieldErrs++
			} else {
				recordErrs++
			}
		}
	}
	metrics.RecordErrors(ClassField, fieldErrs)
	metrics.RecordErrors(ClassRecord, recordErrs)
	logger.Info("Validation complete",
		zap.Int("valid", summary.ValidRows),
		zap.Int("invalid", summary.InvalidRows))

	results, writes := p.writer.WriteAll(ctx, valid, p.persistFunc(params, schema))
	summary.Batches = results
	for _, b := range results {
		summary.PersistedRows += b.Succeeded
		summary.FailedRows += b.Failed
		metrics.RecordBatch(b)
	}
	metrics.RecordErrors(ClassPersistence, summary.FailedRows)
	summary.Cancelled = ctx.Err() != nil
	summary.FinishedAt = time.Now()

	if err := checkConservation(summary); err != nil {
		return nil, err
	}

	metrics.Complete()

	report := &RunReport{
		Summary:  summary,
		Parsed:   parsed,
		Outcomes: outcomes,
		Writes:   writes,
		Metrics:  metrics,
	}
	if err := p.reporter.Write(report); err != nil {
		return summary, fmt.Errorf("run finished but artifacts could not be written: %w", err)
	}

	return summary, nil
}

// abort finalizes a structurally failed run with a summary artifact.
func (p *Pipeline) abort(summary *model.RunSummary, logger *zap.Logger, cause error) (*model.RunSummary, error) {
	summary.StructuralError = cause.Error()
	summary.FinishedAt = time.Now()
	logger.Error("Run aborted", zap.Error(cause))

	if werr := p.reporter.WriteFailureSummary(summary); werr != nil {
		logger.Error("Failed to write failure summary", zap.Error(werr))
	}
	return summary, cause
}

// applyDefaults fills schema defaults into blank optional fields.
func applyDefaults(schema model.TargetSchema, records []model.CleanedRecord) {
	for _, spec := range schema.Fields {
		if spec.Default == "" {
			continue
		}
		for i := range records {
			if records[i].Field(spec.Name).IsNull() {
				records[i].Fields[spec.Name] = model.StringValue(spec.Default)
				records[i].Notes = append(records[i].Notes, model.CleaningNote{
					Field:  spec.Name,
					Op:     model.OpDefaulted,
					Reason: fmt.Sprintf("defaulted to %q", spec.Default),
				})
			}
		}
	}
}

// checkConservation enforces the row accounting the summary promises.
func checkConservation(s *model.RunSummary) error {
	if s.TotalRows != s.ValidRows+s.InvalidRows {
		return fmt.Errorf("row accounting broken: %d total != %d valid + %d invalid",
			s.TotalRows, s.ValidRows, s.InvalidRows)
	}
	if s.PersistedRows+s.FailedRows != s.ValidRows {
		return fmt.Errorf("write accounting broken: %d persisted + %d failed != %d valid",
			s.PersistedRows, s.FailedRows, s.ValidRows)
	}
	return nil
}

// persistFunc builds the per-record write for the operation.
func (p *Pipeline) persistFunc(params Params, schema model.TargetSchema) PersistFunc {
	switch schema.Operation {
	case model.OpManagerUpdate:
		return func(ctx context.Context, rec model.CleanedRecord) (string, error) {
			employeeID := rec.Field("employee_id").String()
			managerID := rec.Field("new_manager_id").String()
			err := p.store.UpdateRelationship(ctx, params.TenantID, employeeID, ReportsTo, managerID)
			if err != nil {
				return "", err
			}
			return employeeID, nil
		}
	default:
		return func(ctx context.Context, rec model.CleanedRecord) (string, error) {
			now := time.Now().UTC().Format(time.RFC3339)
			fields := map[string]interface{}{
				"uuid":        uuid.New().String(),
				"employer_id": params.TenantID,
				"created_by":  params.ActorID,
				"created_at":  now,
				"updated_at":  now,
			}
			for _, spec := range schema.Fields {
				if v := rec.Field(spec.Name); !v.IsNull() {
					fields[spec.Name] = v.Native()
				}
			}
			return p.store.Create(ctx, params.TenantID, schema.EntityType, fields)
		}
	}
}
