package accounts

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type LoginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterForm struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// DoctorForm is the doctor self-registration form. License is optional but
// must be at least five characters when given.
type DoctorForm struct {
	Name            string `json:"name" validate:"required,min=2"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	Specialty       string `json:"specialty" validate:"required"`
	License         string `json:"license" validate:"omitempty,min=5"`
}

// messages maps "<json field>.<tag>" to the inline error shown under the
// input.
var messages = map[string]string{
	"name.required":            "Name is required",
	"name.min":                 "Name must be at least 2 characters",
	"email.required":           "Email is required",
	"email.email":              "Invalid email",
	"password.required":        "Password is required",
	"password.min":             "Password must be at least 6 characters",
	"confirmPassword.required": "Confirm Password is required",
	"confirmPassword.eqfield":  "Passwords must match",
	"specialty.required":       "Specialty is required",
	"license.min":              "License number must be at least 5 characters",
}

// The doctor form words its email error differently.
var doctorMessages = map[string]string{
	"email.email": "Invalid email format",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// check validates form and returns one message per failing field, or nil.
func check(form any, overrides map[string]string) (map[string]string, error) {
	err := validate.Struct(form)
	if err == nil {
		return nil, nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		key := fe.Field() + "." + fe.Tag()
		msg, ok := overrides[key]
		if !ok {
			msg, ok = messages[key]
		}
		if !ok {
			msg = fe.Error()
		}
		if _, seen := fields[fe.Field()]; !seen {
			fields[fe.Field()] = msg
		}
	}
	return fields, nil
}
