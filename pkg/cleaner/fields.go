// pkg/cleaner/fields.go
package cleaner

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/smartwage/hr-ingress/pkg/model"
)

// placeholderValues are spellings customers use to mean "no value".
var placeholderValues = map[string]bool{
	"n/a":     true,
	"na":      true,
	"none":    true,
	"null":    true,
	"unknown": true,
	"-":       true,
	"--":      true,
}

// currencySymbols are stripped from salary cells before parsing.
const currencySymbols = "R$£€¥"

func note(field, op, reason string) model.CleaningNote {
	return model.CleaningNote{Field: field, Op: op, Reason: reason}
}

func isPlaceholder(s string) bool {
	return placeholderValues[strings.ToLower(s)]
}

// CleanText trims a cell and collapses internal whitespace. Blank cells
// stay null.
func CleanText(field, raw string) (model.FieldValue, []model.CleaningNote) {
	s := strings.Join(strings.Fields(raw), " ")
	if s == "" {
		return model.NullValue(), nil
	}
	return model.StringValue(s), nil
}

// CleanName normalizes a person name: whitespace collapsed, title case.
// Placeholder values become null; single-character names are rejected.
func CleanName(field, raw string) (model.FieldValue, []model.CleaningNote) {
	s := strings.Join(strings.Fields(raw), " ")
	if s == "" {
		return model.NullValue(), nil
	}
	if isPlaceholder(s) {
		return model.NullValue(), []model.CleaningNote{
			note(field, model.OpFlagged, "placeholder value treated as blank"),
		}
	}
	if len([]rune(s)) < 2 {
		return model.StringValue(s), []model.CleaningNote{
			note(field, model.OpRejected, "name too short"),
		}
	}

	titled := cases.Title(language.English).String(strings.ToLower(s))
	var notes []model.CleaningNote
	if titled != raw {
		notes = append(notes, note(field, model.OpNormalized, "name normalized"))
	}
	return model.StringValue(titled), notes
}

// CleanMobile normalizes a South African mobile number to the canonical
// 27XXXXXXXXX form (country code plus nine digits).
//
// Accepted inputs, after stripping everything but digits:
//   - 27 followed by nine digits (already canonical)
//   - 0 followed by nine digits (local form, 0 replaced with 27)
//   - a bare nine digits (country code assumed, flagged)
//
// Anything else is rejected.
func CleanMobile(field, raw string) (model.FieldValue, []model.CleaningNote) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return model.NullValue(), nil
	}
	if isPlaceholder(trimmed) {
		return model.NullValue(), []model.CleaningNote{
			note(field, model.OpFlagged, "placeholder value treated as blank"),
		}
	}

	var digits strings.Builder
	for _, r := range trimmed {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()

	switch {
	case len(d) == 11 && strings.HasPrefix(d, "27"):
		var notes []model.CleaningNote
		if d != raw {
			notes = append(notes, note(field, model.OpNormalized, "phone number normalized"))
		}
		return model.StringValue(d), notes

	case len(d) == 10 && strings.HasPrefix(d, "0"):
		return model.StringValue("27" + d[1:]), []model.CleaningNote{
			note(field, model.OpNormalized, "local prefix 0 replaced with country code 27"),
		}

	case len(d) == 9:
		return model.StringValue("27" + d), []model.CleaningNote{
			note(field, model.OpFlagged, "country code 27 assumed"),
		}

	default:
		return model.StringValue(trimmed), []model.CleaningNote{
			note(field, model.OpRejected, "unrecognized phone number format"),
		}
	}
}

// CleanEmail lowercases and trims an email address and checks its basic
// shape: one @ with a non-empty local part and a dotted domain.
func CleanEmail(field, raw string) (model.FieldValue, []model.CleaningNote) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return model.NullValue(), nil
	}
	if isPlaceholder(s) {
		return model.NullValue(), []model.CleaningNote{
			note(field, model.OpFlagged, "placeholder value treated as blank"),
		}
	}

	at := strings.Index(s, "@")
	valid := at > 0 &&
		strings.Count(s, "@") == 1 &&
		at < len(s)-1 &&
		strings.Contains(s[at+1:], ".") &&
		!strings.HasPrefix(s[at+1:], ".") &&
		!strings.HasSuffix(s, ".")
	if !valid {
		return model.StringValue(s), []model.CleaningNote{
			note(field, model.OpRejected, "invalid email format"),
		}
	}

	var notes []model.CleaningNote
	if s != raw {
		notes = append(notes, note(field, model.OpNormalized, "email normalized"))
	}
	return model.StringValue(s), notes
}

// CleanSalary strips currency symbols, thousands separators and spaces,
// then parses the remainder as a decimal amount. Unparseable values are
// rejected; non-positive amounts are flagged but kept.
func CleanSalary(field, raw string) (model.FieldValue, []model.CleaningNote) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return model.NullValue(), nil
	}
	if isPlaceholder(trimmed) {
		return model.NullValue(), []model.CleaningNote{
			note(field, model.OpFlagged, "placeholder value treated as blank"),
		}
	}

	var b strings.Builder
	for _, r := range trimmed {
		if strings.ContainsRune(currencySymbols, r) || r == ',' || r == ' ' {
			continue
		}
		b.WriteRune(r)
	}
	s := b.String()

	d, err := decimal.NewFromString(s)
	if err != nil {
		return model.StringValue(trimmed), []model.CleaningNote{
			note(field, model.OpRejected, "unparseable salary value"),
		}
	}

	var notes []model.CleaningNote
	if d.String() != raw {
		notes = append(notes, note(field, model.OpNormalized, "salary normalized"))
	}
	if !d.IsPositive() {
		notes = append(notes, note(field, model.OpFlagged, "non-positive salary"))
	}
	return model.DecimalValue(d), notes
}

// CleanIdentifier parses a store identifier cell as a positive integer.
func CleanIdentifier(field, raw string) (model.FieldValue, []model.CleaningNote) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return model.NullValue(), nil
	}
	if isPlaceholder(s) {
		return model.NullValue(), []model.CleaningNote{
			note(field, model.OpFlagged, "placeholder value treated as blank"),
		}
	}

	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v <= 0 {
		return model.StringValue(s), []model.CleaningNote{
			note(field, model.OpRejected, "not a positive integer identifier"),
		}
	}
	return model.IntValue(v), nil
}

// CleanStatus lowercases and trims a status cell. Blank cells stay null
// so the pipeline can apply the schema default.
func CleanStatus(field, raw string) (model.FieldValue, []model.CleaningNote) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return model.NullValue(), nil
	}
	if isPlaceholder(s) {
		return model.NullValue(), []model.CleaningNote{
			note(field, model.OpFlagged, "placeholder value treated as blank"),
		}
	}

	var notes []model.CleaningNote
	if s != raw {
		notes = append(notes, note(field, model.OpNormalized, "status normalized"))
	}
	return model.StringValue(s), notes
}
