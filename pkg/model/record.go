// pkg/model/record.go
package model

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// FieldKind identifies the type carried by a FieldValue.
type FieldKind int

const (
	FieldNull FieldKind = iota
	FieldString
	FieldInt
	FieldDecimal
)

// FieldValue is a typed, normalized cell value produced by the cleaner.
// Blank or placeholder input stays Null; the cleaner never defaults data.
type FieldValue struct {
	Kind FieldKind
	Str  string
	Int  int64
	Dec  decimal.Decimal
}

// NullValue returns a null field value.
func NullValue() FieldValue {
	return FieldValue{Kind: FieldNull}
}

// StringValue wraps a string as a field value.
func StringValue(s string) FieldValue {
	return FieldValue{Kind: FieldString, Str: s}
}

// IntValue wraps an int64 as a field value.
func IntValue(i int64) FieldValue {
	return FieldValue{Kind: FieldInt, Int: i}
}

// DecimalValue wraps a decimal as a field value.
func DecimalValue(d decimal.Decimal) FieldValue {
	return FieldValue{Kind: FieldDecimal, Dec: d}
}

// IsNull reports whether the value is null.
func (v FieldValue) IsNull() bool {
	return v.Kind == FieldNull
}

// String renders the value the way it is written to output artifacts
// and persisted to the store. Null renders as the empty string.
func (v FieldValue) String() string {
	switch v.Kind {
	case FieldString:
		return v.Str
	case FieldInt:
		return strconv.FormatInt(v.Int, 10)
	case FieldDecimal:
		return v.Dec.String()
	default:
		return ""
	}
}

// Native returns the value as the type the store adapter expects.
func (v FieldValue) Native() interface{} {
	switch v.Kind {
	case FieldString:
		return v.Str
	case FieldInt:
		return v.Int
	case FieldDecimal:
		f, _ := v.Dec.Float64()
		return f
	default:
		return nil
	}
}

// RawRecord is one parsed data row. Cells preserve the original column
// order of the file; Line is the 1-based physical line number (the header
// row is line 1, so the first data row is line 2).
type RawRecord struct {
	Line  int
	Cells []string
}

// Cell returns the raw cell at the given header index, or the empty
// string when the row is shorter than the header.
func (r RawRecord) Cell(idx int) string {
	if idx < 0 || idx >= len(r.Cells) {
		return ""
	}
	return r.Cells[idx]
}

// Cleaning note operations.
const (
	OpNormalized = "normalized"
	OpDefaulted  = "defaulted"
	OpFlagged    = "flagged"
	OpRejected   = "rejected"
)

// CleaningNote records a single cleaning action on one field. Notes with
// Op == OpRejected mark the value as format-invalid for the validator;
// OpFlagged notes are informational and do not invalidate the record.
type CleaningNote struct {
	Field  string
	Op     string
	Reason string
}

// CleanedRecord holds the normalized fields of exactly one RawRecord,
// keyed by canonical field name. Unmapped canonical fields are absent.
type CleanedRecord struct {
	Line   int
	Fields map[string]FieldValue
	Notes  []CleaningNote
}

// Field returns the cleaned value for a canonical field. Absent fields
// read as Null.
func (r CleanedRecord) Field(name string) FieldValue {
	if v, ok := r.Fields[name]; ok {
		return v
	}
	return NullValue()
}

// RejectedNotes returns the notes that mark a value as invalid.
func (r CleanedRecord) RejectedNotes() []CleaningNote {
	var out []CleaningNote
	for _, n := range r.Notes {
		if n.Op == OpRejected {
			out = append(out, n)
		}
	}
	return out
}
