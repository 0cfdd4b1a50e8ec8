// pkg/model/schema.go
package model

// Operation identifies a bulk operation type.
type Operation string

const (
	OpEmployeeCreate Operation = "employee_create"
	OpManagerUpdate  Operation = "manager_update"
)

// FieldSpec describes one canonical field of a target schema.
type FieldSpec struct {
	Name     string
	Required bool
	// Default, when non-empty, is applied by the pipeline to records
	// that arrive with the field blank.
	Default string
}

// TargetSchema is the set of canonical fields a bulk operation expects.
type TargetSchema struct {
	Operation Operation
	// EntityType is the store entity the operation acts on.
	EntityType string
	Fields     []FieldSpec
	// DedupeField, when non-empty, must be unique within the file.
	DedupeField string
}

// Required returns the names of the required fields.
func (s TargetSchema) Required() []string {
	var out []string
	for _, f := range s.Fields {
		if f.Required {
			out = append(out, f.Name)
		}
	}
	return out
}

// Spec returns the spec for a canonical field, if the schema has it.
func (s TargetSchema) Spec(name string) (FieldSpec, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// EmployeeImportSchema returns the schema for bulk employee creation.
func EmployeeImportSchema() TargetSchema {
	return TargetSchema{
		Operation:  OpEmployeeCreate,
		EntityType: "employee",
		Fields: []FieldSpec{
			{Name: "first_name", Required: true},
			{Name: "last_name", Required: true},
			{Name: "mobile_number", Required: true},
			{Name: "email", Required: true},
			{Name: "employee_no", Required: true},
			{Name: "salary", Required: false},
			{Name: "status", Required: false, Default: "active"},
		},
		DedupeField: "mobile_number",
	}
}

// ManagerUpdateSchema returns the schema for bulk manager reassignment.
func ManagerUpdateSchema() TargetSchema {
	return TargetSchema{
		Operation:  OpManagerUpdate,
		EntityType: "employee",
		Fields: []FieldSpec{
			{Name: "employee_id", Required: true},
			{Name: "new_manager_id", Required: true},
		},
		DedupeField: "employee_id",
	}
}

// SchemaFor returns the schema for an operation.
func SchemaFor(op Operation) (TargetSchema, bool) {
	switch op {
	case OpEmployeeCreate:
		return EmployeeImportSchema(), true
	case OpManagerUpdate:
		return ManagerUpdateSchema(), true
	default:
		return TargetSchema{}, false
	}
}
