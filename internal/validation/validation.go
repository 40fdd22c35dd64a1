package validation

import "github.com/go-playground/validator/v10"

var validate = validator.New(validator.WithRequiredStructEnabled())

// Struct: request gövdesini struct tag'lerine göre doğrular.
func Struct(s any) error {
	return validate.Struct(s)
}
