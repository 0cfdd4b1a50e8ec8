// pkg/mapper/mapper.go
package mapper

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
	"go.uber.org/zap"

	"github.com/smartwage/hr-ingress/pkg/model"
)

// Mapper resolves raw CSV headers to the canonical fields of a target
// schema using an alias table and fuzzy fallback matching.
type Mapper struct {
	threshold float64
	logger    *zap.Logger
}

// NewMapper creates a header mapper. threshold is the minimum fuzzy
// similarity score in (0,1] for a match to be accepted.
func NewMapper(threshold float64, logger *zap.Logger) (*Mapper, error) {
	if threshold <= 0 || threshold > 1 {
		return nil, fmt.Errorf("match threshold must be in (0, 1], got %g", threshold)
	}
	if logger == nil {
		logger = zap.L()
	}
	return &Mapper{
		threshold: threshold,
		logger:    logger.Named("mapper"),
	}, nil
}

// MapHeaders resolves every raw header against the schema. Each raw
// header maps to at most one canonical field and each canonical field
// is claimed by at most one header; when several headers match the same
// field, the leftmost wins and the rest are reported as shadowed.
// Mapping fails only when a required field ends up unclaimed.
func (m *Mapper) MapHeaders(headers []string, schema model.TargetSchema) (model.HeaderMapping, error) {
	mapping := model.HeaderMapping{}
	claimed := make(map[string]bool)

	for idx, header := range headers {
		norm := Normalize(header)
		if norm == "" {
			mapping.Unmapped = append(mapping.Unmapped, header)
			continue
		}

		field, score := m.bestMatch(norm, schema)
		if field == "" {
			m.logger.Debug("Header matched no canonical field",
				zap.String("header", header))
			mapping.Unmapped = append(mapping.Unmapped, header)
			continue
		}

		if claimed[field] {
			m.logger.Warn("Header shadowed by an earlier column",
				zap.String("header", header),
				zap.String("field", field))
			mapping.Shadowed = append(mapping.Shadowed, header)
			continue
		}

		claimed[field] = true
		mapping.Columns = append(mapping.Columns, model.ColumnMapping{
			Header:     header,
			Index:      idx,
			Field:      field,
			Confidence: score,
		})
		m.logger.Debug("Mapped header",
			zap.String("header", header),
			zap.String("field", field),
			zap.Float64("confidence", score))
	}

	var missing []string
	for _, f := range schema.Required() {
		if !claimed[f] {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return model.HeaderMapping{}, fmt.Errorf("missing required column: %s", strings.Join(missing, ", "))
	}

	return mapping, nil
}

// bestMatch scores a normalized header against every field of the
// schema and returns the winner, or "" when nothing clears the
// threshold. An exact alias hit beats any fuzzy score.
func (m *Mapper) bestMatch(norm string, schema model.TargetSchema) (string, float64) {
	bestField := ""
	bestScore := 0.0
	bestExact := false

	for _, spec := range schema.Fields {
		for _, alias := range aliasesFor(spec.Name) {
			aliasNorm := Normalize(alias)
			if aliasNorm == norm {
				if !bestExact {
					bestField = spec.Name
					bestScore = 1.0
					bestExact = true
				}
				continue
			}
			if bestExact {
				continue
			}
			score := similarity(norm, aliasNorm)
			if score > bestScore {
				bestField = spec.Name
				bestScore = score
			}
		}
	}

	if !bestExact && bestScore < m.threshold {
		return "", 0
	}
	return bestField, bestScore
}

// Normalize lowercases a header and collapses punctuation, underscores
// and runs of whitespace into single spaces.
func Normalize(header string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(header)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// similarity returns an edit-distance ratio in [0,1].
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(longest)
}
