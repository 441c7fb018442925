// Package validate checks user input locally, before any request is built.
// Failures are *model.Error values of kind KindValidation.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/me/linkshort/pkg/model"
)

// shortCodePattern is the accepted alphabet for custom aliases.
var shortCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

var (
	once     sync.Once
	instance *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			if name := f.Tag.Get("label"); name != "" {
				return name
			}
			return strings.ToLower(f.Name)
		})
		err := v.RegisterValidation("shortcode", func(fl validator.FieldLevel) bool {
			return shortCodePattern.MatchString(fl.Field().String())
		})
		if err != nil {
			panic(fmt.Sprintf("validate: register shortcode: %v", err))
		}
		instance = v
	})
	return instance
}

// Login is the input of a sign-in attempt.
type Login struct {
	Username string `validate:"required" label:"Username"`
	Password string `validate:"required" label:"Password"`
}

// Signup is the input of an account registration.
type Signup struct {
	Username        string `validate:"required,min=3" label:"Username"`
	Email           string `validate:"required,email" label:"Email"`
	Password        string `validate:"required,min=6" label:"Password"`
	ConfirmPassword string `validate:"omitempty,eqfield=Password" label:"Password confirmation"`
}

// Shorten is the input of a create-link request.
type Shorten struct {
	OriginalURL string `validate:"required,http_url" label:"URL"`
	CustomCode  string `validate:"omitempty,min=3,max=32,shortcode" label:"Custom alias"`
}

// Code is a short code looked up by the user.
type Code struct {
	ShortCode string `validate:"required,max=64,shortcode" label:"Short code"`
}

// Struct validates one of the input types above and returns a
// KindValidation error naming the first failing field.
func Struct(op string, input any) error {
	err := engine().Struct(input)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return model.NewValidationError(op, fieldError(ve[0]))
	}
	return model.NewValidationError(op, err.Error())
}

// fieldError converts a single FieldError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "Please enter a valid email address"
	case "http_url":
		return "Please enter a valid URL (http:// or https://)"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "eqfield":
		return "Passwords do not match"
	case "shortcode":
		return field + " may only contain letters, digits, '-' and '_'"
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
