package services

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// ErrValidation wraps every input validation failure. The wrapped
// validator.ValidationErrors, when present, name the offending fields.
var ErrValidation = errors.New("validation failed")

var zipCodePattern = regexp.MustCompile(`^\d{5}(-\d{4})?$`)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("zipcode", func(fl validator.FieldLevel) bool {
		return zipCodePattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("register zipcode validation: %v", err))
	}
	return v
}

func validateStruct(v *validator.Validate, s interface{}) error {
	if err := v.Struct(s); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}
