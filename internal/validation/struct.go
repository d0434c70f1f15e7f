// Package validation holds the input validators shared by the domain services
// and the URL checks used by configuration.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/domain/errs"
	"github.com/go-playground/validator/v10"
)

var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsEmail reports whether value has the shape local@domain.tld.
func IsEmail(value string) bool {
	return emailShape.MatchString(value)
}

// New returns a validator that reports fields by their JSON names and knows
// the "emailshape" rule.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	_ = v.RegisterValidation("emailshape", func(fl validator.FieldLevel) bool {
		return IsEmail(fl.Field().String())
	})
	return v
}

// Error converts the first validator failure in err to a validation error.
func Error(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errs.Validation(err.Error())
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required", "notblank":
		return errs.Field(fe.Field(), "is required")
	case "required_with":
		return errs.Field(fe.Field(), fmt.Sprintf("is required with %s", lowerFirst(fe.Param())))
	case "emailshape":
		return errs.Field(fe.Field(), "is not a valid email")
	case "max":
		return errs.Field(fe.Field(), fmt.Sprintf("must be at most %s characters", fe.Param()))
	default:
		return errs.Field(fe.Field(), "is invalid")
	}
}

func lowerFirst(value string) string {
	if value == "" {
		return value
	}
	return strings.ToLower(value[:1]) + value[1:]
}
