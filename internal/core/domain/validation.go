package domain

import "strings"

// FieldViolation names one field that failed its step check.
type FieldViolation struct {
	Field   InputField
	Message string
}

// ValidationResult is the outcome of checking a step. It is an expected
// result, not an error: a non-empty result keeps the wizard where it is.
type ValidationResult struct {
	Step       StepID
	Violations []FieldViolation
}

// OK reports whether no field was violated.
func (r ValidationResult) OK() bool {
	return len(r.Violations) == 0
}

// Fields lists the violated fields in order.
func (r ValidationResult) Fields() []InputField {
	fields := make([]InputField, 0, len(r.Violations))
	for _, v := range r.Violations {
		fields = append(fields, v.Field)
	}
	return fields
}

// Add records a violation.
func (r *ValidationResult) Add(field InputField, message string) {
	r.Violations = append(r.Violations, FieldViolation{Field: field, Message: message})
}

// Merge appends the violations of other.
func (r *ValidationResult) Merge(other ValidationResult) {
	r.Violations = append(r.Violations, other.Violations...)
}

// String joins the messages for display as a warning.
func (r ValidationResult) String() string {
	msgs := make([]string, 0, len(r.Violations))
	for _, v := range r.Violations {
		msgs = append(msgs, v.Message)
	}
	return strings.Join(msgs, "; ")
}
