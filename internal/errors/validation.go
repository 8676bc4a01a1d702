package errors

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ValidationError describes one failed field rule.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

// ToValidationErrors extracts field-level details from a (possibly wrapped)
// go-playground validation error. Returns nil when err carries none.
func ToValidationErrors(err error) ValidationErrors {
	var validatorErr validator.ValidationErrors
	if !errors.As(err, &validatorErr) {
		return nil
	}

	out := make(ValidationErrors, 0, len(validatorErr))
	for _, fieldErr := range validatorErr {
		out = append(out, ValidationError{
			Field:   fieldErr.Field(),
			Message: fieldMessage(fieldErr),
			Value:   fieldErr.Value(),
			Rule:    fieldErr.Tag(),
		})
	}
	return out
}

// fieldMessage maps a rule tag to a user-facing message.
func fieldMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", err.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", err.Param())
	case "choice_label":
		return "must be one of: a b c d"
	case "dive":
		return "contains invalid entries"
	default:
		return fmt.Sprintf("failed %s validation", err.Tag())
	}
}
