// Package validate runs client-side form checks before any network call:
// failed checks block the request and surface a message without a round
// trip. Server-side validation remains the authority; these checks only
// save the obvious round trips.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New()
	// Use JSON tag names in messages instead of Go struct field names.
	val.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return val
}

// Error is a form-level validation failure with a user-facing message.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string { return e.Message }

// Struct validates a tagged form struct and returns the first failure as
// a user-facing *Error, or nil.
func Struct(form any) error {
	err := v.Struct(form)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &Error{Message: "invalid input"}
	}
	fe := fieldErrs[0]
	return &Error{Field: fe.Field(), Message: messageFor(fe)}
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "eqfield":
		return "passwords do not match"
	case "gte", "lte":
		return fmt.Sprintf("%s is out of range", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// LoginForm are the pre-flight checks for the login screen.
type LoginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// PasswordChangeForm are the pre-flight checks for the change-password
// screen. The confirmation must match before anything is sent.
type PasswordChangeForm struct {
	OldPassword     string `json:"old_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

// PiketDayForm checks a duty-roster day selection.
type PiketDayForm struct {
	DayOfWeek int `json:"day_of_week" validate:"gte=0,lte=6"`
}
