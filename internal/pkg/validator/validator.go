package validator

import (
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate - struct validation against `validate` tags
func Validate(s interface{}) error {
	return validate.Struct(s)
}

// GetValidator - underlying validator for custom configuration
func GetValidator() *validator.Validate {
	return validate
}
