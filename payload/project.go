package payload

// Field names of a large-project row, as sent by the backend.
const (
	FieldProjectName = "project_name"
	FieldDistrict    = "district"
	FieldIndustry    = "industry"
	FieldPeopleCount = "people_count"
	FieldAmount      = "amount"
	FieldApplicant   = "applicant"
	FieldContent     = "content"
)

// ProjectFields lists the row fields in column order.
var ProjectFields = []string{
	FieldProjectName, FieldDistrict, FieldIndustry, FieldPeopleCount,
	FieldAmount, FieldApplicant, FieldContent,
}

// ProjectRecord is one row of a large-project table.
type ProjectRecord struct {
	ProjectName string `json:"project_name"`
	District    string `json:"district"`
	Industry    string `json:"industry"`
	PeopleCount Number `json:"people_count"`
	Amount      Number `json:"amount"`
	Applicant   string `json:"applicant"`
	Content     string `json:"content"`
}

// IsNumericField reports whether rows compare numerically on the field.
func IsNumericField(field string) bool {
	return field == FieldPeopleCount || field == FieldAmount
}

// IsField reports whether field names a ProjectRecord column.
func IsField(field string) bool {
	for _, f := range ProjectFields {
		if f == field {
			return true
		}
	}
	return false
}

// Text returns the string value of a text field, or "" for numeric or unknown fields.
func (r ProjectRecord) Text(field string) string {
	switch field {
	case FieldProjectName:
		return r.ProjectName
	case FieldDistrict:
		return r.District
	case FieldIndustry:
		return r.Industry
	case FieldApplicant:
		return r.Applicant
	case FieldContent:
		return r.Content
	}
	return ""
}

// Number returns the value of a numeric field, or 0.
func (r ProjectRecord) Number(field string) float64 {
	switch field {
	case FieldPeopleCount:
		return float64(r.PeopleCount)
	case FieldAmount:
		return float64(r.Amount)
	}
	return 0
}
