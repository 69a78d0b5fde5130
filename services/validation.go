package services

import "github.com/go-playground/validator/v10"

var validate = validator.New()

const msgInvalidEmail = "Please enter a valid email address."

func validEmail(s string) bool {
	return validate.Var(s, "required,email") == nil
}

// validHexColor accepts #RRGGBB only.
func validHexColor(s string) bool {
	return validate.Var(s, "len=7,hexcolor") == nil
}
