package guestbook

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/guestdesk/backend/pkg/apperr"
)

// phonePattern allows an optional leading '+', digits and common separators.
var phonePattern = regexp.MustCompile(`^\+?[0-9(][0-9 ()./-]{4,48}[0-9]$`)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails on a programming error (nil func or empty tag).
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return v
}

// validationError converts validator output into a client-facing apperr.Validation.
func validationError(err error) error {
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) || len(fields) == 0 {
		return apperr.Validation("Invalid registration data.")
	}
	fe := fields[0]
	field := fieldPath(fe)
	switch fe.Tag() {
	case "required":
		return apperr.Validation(fmt.Sprintf("Field '%s' is required.", field))
	case "email":
		return apperr.Validation(fmt.Sprintf("Field '%s' must be a valid email address.", field))
	case "phone":
		return apperr.Validation(fmt.Sprintf("Field '%s' must be a valid phone number.", field))
	case "max":
		return apperr.Validation(fmt.Sprintf("Field '%s' must be at most %s characters.", field, fe.Param()))
	default:
		return apperr.Validation(fmt.Sprintf("Field '%s' is invalid.", field))
	}
}

// fieldPath is the JSON path of the failing field without the root struct, e.g. "company.name".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}
