// pkg/mapper/aliases.go
package mapper

// fieldAliases maps each canonical field to the raw header spellings
// seen in customer files. Matching is done on normalized text, so
// case, punctuation and underscore/space differences do not matter.
var fieldAliases = map[string][]string{
	"first_name": {
		"first_name", "first name", "firstname", "fname", "given name",
		"given_name", "forename", "name", "employee first name", "first",
	},
	"last_name": {
		"last_name", "last name", "lastname", "lname", "surname",
		"family name", "family_name", "employee last name", "last",
	},
	"mobile_number": {
		"mobile_number", "mobile number", "mobile", "cell", "cell number",
		"cell_number", "cellphone", "cell phone", "phone", "phone number",
		"phone_number", "contact", "contact number", "contact_number",
		"mobile no", "cell no", "phone no", "msisdn", "tel", "telephone",
	},
	"email": {
		"email", "email address", "email_address", "e-mail", "e mail",
		"mail", "work email", "work_email", "employee email",
		"email addr", "contact email",
	},
	"employee_no": {
		"employee_no", "employee no", "employee number", "employee_number",
		"emp no", "emp_no", "emp number", "staff no", "staff number",
		"staff_number", "payroll no", "payroll number", "payroll_number",
		"personnel no", "personnel number", "works number",
	},
	"salary": {
		"salary", "monthly salary", "monthly_salary", "gross salary",
		"gross_salary", "basic salary", "basic_salary", "pay", "wage",
		"wages", "remuneration", "income", "monthly pay", "net salary",
	},
	"status": {
		"status", "employee status", "employee_status", "employment status",
		"employment_status", "state", "active", "account status",
	},
	"employee_id": {
		"employee_id", "employee id", "emp id", "emp_id", "id",
		"staff id", "staff_id", "worker id", "person id", "record id",
	},
	"new_manager_id": {
		"new_manager_id", "new manager id", "manager id", "manager_id",
		"manager", "new manager", "supervisor id", "supervisor_id",
		"supervisor", "approver id", "approver_id", "new approver",
		"reports to", "reports_to", "line manager", "line manager id",
	},
}

// aliasesFor returns the candidate spellings for a canonical field.
// The canonical name itself is always a candidate.
func aliasesFor(field string) []string {
	aliases, ok := fieldAliases[field]
	if !ok {
		return []string{field}
	}
	return aliases
}
