// pkg/validator/validator.go
package validator

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/smartwage/hr-ingress/pkg/model"
	"github.com/smartwage/hr-ingress/pkg/store"
)

// RecordValidator applies the rule chain to cleaned records. Rules run
// in a fixed order (required, format, in-file duplicate, store checks)
// and reasons accumulate, so a rejected row reports every problem it
// has rather than just the first.
type RecordValidator struct {
	store  store.Store
	logger *zap.Logger
}

// NewRecordValidator creates a new RecordValidator instance
func NewRecordValidator(st store.Store, logger *zap.Logger) (*RecordValidator, error) {
	if st == nil {
		return nil, errors.New("store cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &RecordValidator{
		store:  st,
		logger: logger.Named("validator"),
	}, nil
}

// ValidateAll produces exactly one outcome per record, in input order.
// It returns an error only when the store cannot be consulted; records
// are never dropped or aborted individually.
func (v *RecordValidator) ValidateAll(
	ctx context.Context,
	tenantID string,
	schema model.TargetSchema,
	records []model.CleanedRecord,
) ([]model.ValidationOutcome, error) {
	outcomes := make([]model.ValidationOutcome, len(records))
	firstSeen := make(map[string]int)

	for i, rec := range records {
		outcome := model.ValidationOutcome{Line: rec.Line}

		outcome.Reasons = append(outcome.Reasons, requiredReasons(schema, rec)...)
		outcome.Reasons = append(outcome.Reasons, formatReasons(rec)...)
		outcome.Reasons = append(outcome.Reasons, duplicateReasons(schema, rec, firstSeen)...)

		storeReasons, err := v.storeReasons(ctx, tenantID, schema, rec)
		if err != nil {
			return nil, fmt.Errorf("store check failed at line %d: %w", rec.Line, err)
		}
		outcome.Reasons = append(outcome.Reasons, storeReasons...)

		outcome.Valid = len(outcome.Reasons) == 0
		outcomes[i] = outcome

		if !outcome.Valid {
			v.logger.Debug("Record rejected",
				zap.Int("line", rec.Line),
				zap.Int("reasons", len(outcome.Reasons)))
		}
	}

	return outcomes, nil
}

// requiredReasons rejects records missing any required field.
func requiredReasons(schema model.TargetSchema, rec model.CleanedRecord) []model.Reason {
	var reasons []model.Reason
	for _, name := range schema.Required() {
		if rec.Field(name).IsNull() {
			reasons = append(reasons, model.Reason{
				Field:   name,
				Rule:    model.RuleRequired,
				Message: "missing required value",
			})
		}
	}
	return reasons
}

// formatReasons converts the cleaner's rejections into failures.
func formatReasons(rec model.CleanedRecord) []model.Reason {
	var reasons []model.Reason
	for _, n := range rec.RejectedNotes() {
		reasons = append(reasons, model.Reason{
			Field:   n.Field,
			Rule:    model.RuleFormat,
			Message: n.Reason,
		})
	}
	return reasons
}

// duplicateReasons rejects repeats of the schema's dedupe field within
// the file. The first occurrence keeps the value.
func duplicateReasons(
	schema model.TargetSchema,
	rec model.CleanedRecord,
	firstSeen map[string]int,
) []model.Reason {
	if schema.DedupeField == "" {
		return nil
	}

	value := rec.Field(schema.DedupeField)
	if value.IsNull() {
		return nil
	}

	key := value.String()
	if line, seen := firstSeen[key]; seen {
		return []model.Reason{{
			Field:   schema.DedupeField,
			Rule:    model.RuleDuplicate,
			Message: fmt.Sprintf("duplicate %s, first seen at line %d", schema.DedupeField, line),
		}}
	}

	firstSeen[key] = rec.Line
	return nil
}

// storeReasons consults the graph store for operation-specific checks.
// Fields that are null or already format-rejected are not looked up.
func (v *RecordValidator) storeReasons(
	ctx context.Context,
	tenantID string,
	schema model.TargetSchema,
	rec model.CleanedRecord,
) ([]model.Reason, error) {
	switch schema.Operation {
	case model.OpEmployeeCreate:
		return v.employeeCreateReasons(ctx, tenantID, schema, rec)
	case model.OpManagerUpdate:
		return v.managerUpdateReasons(ctx, tenantID, schema, rec)
	default:
		return nil, nil
	}
}

func (v *RecordValidator) employeeCreateReasons(
	ctx context.Context,
	tenantID string,
	schema model.TargetSchema,
	rec model.CleanedRecord,
) ([]model.Reason, error) {
	var reasons []model.Reason

	mobile := rec.Field("mobile_number")
	if !mobile.IsNull() && !fieldRejected(rec, "mobile_number") {
		existing, err := v.store.Match(ctx, tenantID, schema.EntityType, map[string]interface{}{
			"mobile_number": mobile.String(),
		})
		if err != nil {
			return nil, err
		}
		if existing != nil {
			reasons = append(reasons, model.Reason{
				Field:   "mobile_number",
				Rule:    model.RuleExistence,
				Message: fmt.Sprintf("duplicate mobile number, existing id: %s", existing.ID),
			})
		}
	}

	employeeNo := rec.Field("employee_no")
	if !employeeNo.IsNull() && !fieldRejected(rec, "employee_no") {
		existing, err := v.store.Match(ctx, tenantID, schema.EntityType, map[string]interface{}{
			"employee_no": employeeNo.String(),
		})
		if err != nil {
			return nil, err
		}
		if existing != nil {
			reasons = append(reasons, model.Reason{
				Field:   "employee_no",
				Rule:    model.RuleExistence,
				Message: fmt.Sprintf("employee number already exists, existing id: %s", existing.ID),
			})
		}
	}

	return reasons, nil
}

func (v *RecordValidator) managerUpdateReasons(
	ctx context.Context,
	tenantID string,
	schema model.TargetSchema,
	rec model.CleanedRecord,
) ([]model.Reason, error) {
	var reasons []model.Reason

	employeeID := rec.Field("employee_id")
	managerID := rec.Field("new_manager_id")

	if !employeeID.IsNull() && !fieldRejected(rec, "employee_id") {
		found, err := v.store.MatchByID(ctx, tenantID, schema.EntityType, employeeID.String())
		if err != nil {
			return nil, err
		}
		if found == nil {
			reasons = append(reasons, model.Reason{
				Field:   "employee_id",
				Rule:    model.RuleExistence,
				Message: fmt.Sprintf("employee %s not found in tenant", employeeID.String()),
			})
		}
	}

	if !managerID.IsNull() && !fieldRejected(rec, "new_manager_id") {
		found, err := v.store.MatchByID(ctx, tenantID, schema.EntityType, managerID.String())
		if err != nil {
			return nil, err
		}
		if found == nil {
			reasons = append(reasons, model.Reason{
				Field:   "new_manager_id",
				Rule:    model.RuleExistence,
				Message: fmt.Sprintf("manager %s not found in tenant", managerID.String()),
			})
		}
	}

	if !employeeID.IsNull() && !managerID.IsNull() && employeeID.String() == managerID.String() {
		reasons = append(reasons, model.Reason{
			Field:   "new_manager_id",
			Rule:    model.RuleExistence,
			Message: "employee cannot be their own manager",
		})
	}

	return reasons, nil
}

// fieldRejected reports whether the cleaner rejected the given field.
func fieldRejected(rec model.CleanedRecord, field string) bool {
	for _, n := range rec.RejectedNotes() {
		if n.Field == field {
			return true
		}
	}
	return false
}
