// pkg/model/mapping.go
package model

// ColumnMapping binds one raw CSV header to a canonical field.
type ColumnMapping struct {
	// Header is the raw header exactly as it appears in the file.
	Header string
	// Index is the zero-based position of the header in the file.
	Index int
	// Field is the canonical field name the header was matched to.
	Field string
	// Confidence is the match score in [0,1]; exact alias hits are 1.0.
	Confidence float64
}

// HeaderMapping is the full resolution of a file's header row against a
// target schema.
type HeaderMapping struct {
	Columns []ColumnMapping
	// Unmapped lists raw headers that matched no canonical field.
	Unmapped []string
	// Shadowed lists raw headers that matched a canonical field already
	// claimed by a column further left.
	Shadowed []string
}

// Lookup returns the mapping for a canonical field, if any.
func (m HeaderMapping) Lookup(field string) (ColumnMapping, bool) {
	for _, c := range m.Columns {
		if c.Field == field {
			return c, true
		}
	}
	return ColumnMapping{}, false
}

// Fields returns the canonical fields that were mapped.
func (m HeaderMapping) Fields() []string {
	out := make([]string, 0, len(m.Columns))
	for _, c := range m.Columns {
		out = append(out, c.Field)
	}
	return out
}
