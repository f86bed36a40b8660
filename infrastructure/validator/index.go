package validator

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func init() {
	validate.RegisterValidation("challenge_type", validateChallengeType)
	validate.RegisterValidation("frame_payload", validateFramePayload)
}

type Validator struct{}

func (v *Validator) ValidateStruct(payload interface{}) *[]error {
	return validateStruct(payload)
}

func (v *Validator) ValidateValue(value any, rules string) error {
	return validateField(value, rules)
}

var ValidatorInstance = Validator{}

func validateStruct(payload interface{}) *[]error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}
	errs := []error{}
	if invalid, ok := err.(*validator.InvalidValidationError); ok {
		errs = append(errs, invalid)
		return &errs
	}
	for _, fieldErr := range err.(validator.ValidationErrors) {
		errs = append(errs, fmt.Errorf("%s failed validation for rule %s", fieldErr.Field(), fieldErr.Tag()))
	}
	return &errs
}

func validateField(value any, rules string) error {
	return validate.Var(value, rules)
}
