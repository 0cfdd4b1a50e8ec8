// pkg/mapper/mapper_test.go
package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smartwage/hr-ingress/pkg/model"
)

func newTestMapper(t *testing.T) *Mapper {
	t.Helper()
	m, err := NewMapper(0.6, zap.NewNop())
	require.NoError(t, err)
	return m
}

func TestNewMapperRejectsBadThreshold(t *testing.T) {
	_, err := NewMapper(0, zap.NewNop())
	assert.Error(t, err)

	_, err = NewMapper(1.5, zap.NewNop())
	assert.Error(t, err)
}

func TestMapHeadersCanonicalRoundTrip(t *testing.T) {
	m := newTestMapper(t)
	schema := model.EmployeeImportSchema()

	headers := []string{"first_name", "last_name", "mobile_number", "email", "employee_no", "salary", "status"}
	mapping, err := m.MapHeaders(headers, schema)
	require.NoError(t, err)

	require.Len(t, mapping.Columns, len(headers))
	for i, col := range mapping.Columns {
		assert.Equal(t, headers[i], col.Field)
		assert.Equal(t, i, col.Index)
		assert.Equal(t, 1.0, col.Confidence)
	}
	assert.Empty(t, mapping.Unmapped)
	assert.Empty(t, mapping.Shadowed)
}

func TestMapHeadersAliases(t *testing.T) {
	m := newTestMapper(t)
	schema := model.EmployeeImportSchema()

	tests := []struct {
		name      string
		header    string
		wantField string
		minScore  float64
	}{
		{"cell number alias", "Cell Number", "mobile_number", 0.9},
		{"surname alias", "Surname", "last_name", 0.9},
		{"given name alias", "Given Name", "first_name", 0.9},
		{"email with punctuation", "E-Mail", "email", 0.9},
		{"staff number alias", "Staff Number", "employee_no", 0.9},
		{"gross salary alias", "Gross Salary", "salary", 0.9},
		{"near miss typo", "Emial Address", "email", 0.6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := []string{"first name", "surname", "cell", "email", "employee no"}
			// Replace the closest canonical slot with the header under test.
			switch tt.wantField {
			case "first_name":
				headers[0] = tt.header
			case "last_name":
				headers[1] = tt.header
			case "mobile_number":
				headers[2] = tt.header
			case "email":
				headers[3] = tt.header
			case "employee_no":
				headers[4] = tt.header
			default:
				headers = append(headers, tt.header)
			}

			mapping, err := m.MapHeaders(headers, schema)
			require.NoError(t, err)

			col, ok := mapping.Lookup(tt.wantField)
			require.True(t, ok, "field %s not mapped", tt.wantField)
			assert.Equal(t, tt.header, col.Header)
			assert.GreaterOrEqual(t, col.Confidence, tt.minScore)
		})
	}
}

func TestMapHeadersBelowThresholdUnmapped(t *testing.T) {
	m := newTestMapper(t)
	schema := model.EmployeeImportSchema()

	headers := []string{"first name", "surname", "cell", "email", "employee no", "favourite colour"}
	mapping, err := m.MapHeaders(headers, schema)
	require.NoError(t, err)

	assert.Contains(t, mapping.Unmapped, "favourite colour")
	_, ok := mapping.Lookup("salary")
	assert.False(t, ok)
}

func TestMapHeadersLeftmostWins(t *testing.T) {
	m := newTestMapper(t)
	schema := model.EmployeeImportSchema()

	headers := []string{"first name", "surname", "cell", "email", "employee no", "phone number"}
	mapping, err := m.MapHeaders(headers, schema)
	require.NoError(t, err)

	col, ok := mapping.Lookup("mobile_number")
	require.True(t, ok)
	assert.Equal(t, "cell", col.Header)
	assert.Equal(t, 2, col.Index)
	assert.Contains(t, mapping.Shadowed, "phone number")
}

func TestMapHeadersMissingRequiredColumn(t *testing.T) {
	m := newTestMapper(t)
	schema := model.EmployeeImportSchema()

	headers := []string{"first name", "surname", "cell", "employee no"}
	_, err := m.MapHeaders(headers, schema)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required column")
	assert.Contains(t, err.Error(), "email")
}

func TestMapHeadersReassignmentSchema(t *testing.T) {
	m := newTestMapper(t)
	schema := model.ManagerUpdateSchema()

	mapping, err := m.MapHeaders([]string{"Employee ID", "New Manager"}, schema)
	require.NoError(t, err)

	emp, ok := mapping.Lookup("employee_id")
	require.True(t, ok)
	assert.Equal(t, "Employee ID", emp.Header)

	mgr, ok := mapping.Lookup("new_manager_id")
	require.True(t, ok)
	assert.Equal(t, "New Manager", mgr.Header)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"First_Name", "first name"},
		{"  CELL   NUMBER ", "cell number"},
		{"E-Mail (Work)", "e mail work"},
		{"___", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.input), "input %q", tt.input)
	}
}
