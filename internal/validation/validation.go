// Package validation checks user input before it reaches the network.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"writex/internal/models"
)

var (
	validate        = newValidator()
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report json names so messages read like the form fields.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return ValidateUsername(fl.Field().String()) == nil
	})
	return v
}

// Struct validates s by its validate tags. Failures are returned as a
// VALIDATION_ERROR AppError carrying the first failing field's message.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return models.NewValidationError(formatFieldError(fieldErrs[0]))
	}
	return models.NewValidationError(err.Error())
}

func formatFieldError(e validator.FieldError) string {
	field := fieldLabel(e.Field())

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, e.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "eqfield":
		return "Passwords do not match"
	case "username":
		if err := ValidateUsername(fmt.Sprint(e.Value())); err != nil {
			return capitalize(err.Error())
		}
		return fmt.Sprintf("%s is invalid", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// fieldLabel turns "tags[1]" into "Tag" and "isPinned" into "IsPinned".
func fieldLabel(name string) string {
	if i := strings.IndexByte(name, '['); i > 0 {
		name = strings.TrimSuffix(name[:i], "s")
	}
	return capitalize(name)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ValidateUsername checks if a username meets requirements
func ValidateUsername(username string) error {
	if len(username) < 3 {
		return fmt.Errorf("username must be at least 3 characters long")
	}

	if len(username) > 30 {
		return fmt.Errorf("username must not exceed 30 characters")
	}

	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("username can only contain letters, numbers, underscores, and hyphens")
	}

	if username[0] == '_' || username[0] == '-' || username[len(username)-1] == '_' || username[len(username)-1] == '-' {
		return fmt.Errorf("username cannot start or end with underscore or hyphen")
	}

	return nil
}
