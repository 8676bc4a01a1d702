package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/eppp-prep/exam-service/internal/models"
)

// Validator wraps struct-tag validation with the domain's custom rules.
type Validator struct {
	structValidator *validator.Validate
}

// New creates a validator with all custom rules registered.
func New() *Validator {
	structValidator := validator.New()
	registerCustomValidators(structValidator)

	return &Validator{structValidator: structValidator}
}

// Validate checks struct tags on s.
func (v *Validator) Validate(s interface{}) error {
	return v.structValidator.Struct(s)
}

// ValidateChoiceLabel checks a label value outside of struct context.
func (v *Validator) ValidateChoiceLabel(label models.ChoiceLabel) bool {
	return label.Valid()
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("choice_label", validateChoiceLabel)

	// Report field names from json tags for better error messages.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateChoiceLabel(fl validator.FieldLevel) bool {
	return models.ChoiceLabel(fl.Field().String()).Valid()
}
