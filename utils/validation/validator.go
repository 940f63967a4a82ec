package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/internship-hub/placement-api/lifecycle"
)

// Validator wraps the go-playground validator
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{
		validate: validator.New(),
	}
}

// ValidateStruct validates a struct using struct tags
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.validate.Struct(s)
}

// FirstViolation converts a validator error into the core's field-specific
// ValidationError, taking the first reported violation.
func FirstViolation(err error) error {
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrs) == 0 {
		return err
	}

	e := validationErrs[0]
	field := toSnakeCase(e.Field())
	message := fmt.Sprintf("%s is invalid", field)
	switch e.Tag() {
	case "required":
		message = fmt.Sprintf("%s is required", field)
	case "email":
		message = "invalid email format"
	case "min":
		message = fmt.Sprintf("%s must be at least %s characters", field, e.Param())
	case "max":
		message = fmt.Sprintf("%s must be at most %s characters", field, e.Param())
	case "oneof":
		message = fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "datetime":
		message = fmt.Sprintf("%s must match format %s", field, e.Param())
	}

	return &lifecycle.ValidationError{Field: field, Message: message}
}

// SanitizeString removes potentially dangerous characters
func SanitizeString(s string) string {
	// Remove null bytes
	s = strings.ReplaceAll(s, "\x00", "")
	// Trim whitespace
	s = strings.TrimSpace(s)
	return s
}

func toSnakeCase(field string) string {
	var b strings.Builder
	runes := []rune(field)
	for i, r := range runes {
		if r >= 'A' && r <= 'Z' {
			// No separator inside an acronym run, so StudentID -> student_id
			if i > 0 && !(runes[i-1] >= 'A' && runes[i-1] <= 'Z') {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
