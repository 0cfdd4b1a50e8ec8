// pkg/cleaner/cleaner.go
package cleaner

import (
	"errors"

	"go.uber.org/zap"

	"github.com/smartwage/hr-ingress/pkg/model"
)

// FieldCleaner normalizes raw cell values into typed field values.
// Cleaning is pure and idempotent: running a cleaned value through the
// cleaner again yields the same value, and blank input stays null.
type FieldCleaner struct {
	logger *zap.Logger
}

// NewFieldCleaner creates a new FieldCleaner instance
func NewFieldCleaner(logger *zap.Logger) (*FieldCleaner, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &FieldCleaner{
		logger: logger.Named("cleaner"),
	}, nil
}

// CleanRecords cleans a batch of raw records against a header mapping.
// Every input record yields exactly one cleaned record.
func (c *FieldCleaner) CleanRecords(
	records []model.RawRecord,
	mapping model.HeaderMapping,
) []model.CleanedRecord {
	cleaned := make([]model.CleanedRecord, 0, len(records))

	for _, rec := range records {
		cleaned = append(cleaned, c.cleanSingleRecord(rec, mapping))
	}

	return cleaned
}

// cleanSingleRecord normalizes every mapped cell of one record.
func (c *FieldCleaner) cleanSingleRecord(
	rec model.RawRecord,
	mapping model.HeaderMapping,
) model.CleanedRecord {
	out := model.CleanedRecord{
		Line:   rec.Line,
		Fields: make(map[string]model.FieldValue, len(mapping.Columns)),
	}

	for _, col := range mapping.Columns {
		value, notes := CleanField(col.Field, rec.Cell(col.Index))
		out.Fields[col.Field] = value
		out.Notes = append(out.Notes, notes...)

		for _, n := range notes {
			if n.Op == model.OpRejected {
				c.logger.Debug("Rejected field value",
					zap.Int("line", rec.Line),
					zap.String("field", n.Field),
					zap.String("reason", n.Reason))
			}
		}
	}

	return out
}

// CleanField dispatches a raw cell to the cleaning routine for its
// canonical field. Unrecognized fields get whitespace normalization only.
func CleanField(field, raw string) (model.FieldValue, []model.CleaningNote) {
	switch field {
	case "first_name", "last_name":
		return CleanName(field, raw)
	case "mobile_number":
		return CleanMobile(field, raw)
	case "email":
		return CleanEmail(field, raw)
	case "salary":
		return CleanSalary(field, raw)
	case "employee_id", "new_manager_id":
		return CleanIdentifier(field, raw)
	case "status":
		return CleanStatus(field, raw)
	default:
		return CleanText(field, raw)
	}
}
