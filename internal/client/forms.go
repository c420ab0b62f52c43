package client

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoginForm is the login form. Field rules mirror what the server accepts plus
// the client-only checks: a well-formed email and a minimum password length.
type LoginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// SignupForm is the registration form.
type SignupForm struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,min=6"`
}

// FieldErrors maps a form field (its JSON name) to a user-facing message.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	parts := make([]string, 0, len(f))
	for _, field := range []string{"email", "password", "confirmPassword"} {
		if msg, ok := f[field]; ok {
			parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
		}
	}
	return strings.Join(parts, "; ")
}

// Validate checks the login form.
func (f LoginForm) Validate() error {
	return validateForm(f)
}

// Validate checks the signup form. Password equality is left to the server.
func (f SignupForm) Validate() error {
	return validateForm(f)
}

func validateForm(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		field := jsonName(fe.Field())
		if _, seen := out[field]; seen {
			continue
		}
		out[field] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "email":
		return "Please enter a valid email address"
	case "min":
		return "Password must be at least 6 characters"
	default:
		if fe.Field() == "Email" {
			return "Please enter a valid email address"
		}
		return "Password must be at least 6 characters"
	}
}

func jsonName(field string) string {
	switch field {
	case "ConfirmPassword":
		return "confirmPassword"
	default:
		return strings.ToLower(field)
	}
}
