package shared

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// NewValidator returns a validator that reports fields by their json name.
// It registers the "storable" tag for text headed to a Postgres TEXT column.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("storable", func(fl validator.FieldLevel) bool {
		return StorableText(fl.Field().String())
	})
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// StorableText reports whether s is valid UTF-8 without NUL bytes, which
// Postgres rejects in text values.
func StorableText(s string) bool {
	return utf8.ValidString(s) && !strings.ContainsRune(s, 0)
}

// ValidationError converts a validator failure into an InvalidRequestError
// describing the first failing field.
func ValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return InvalidRequest(err.Error())
	}
	fe := fieldErrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return InvalidRequest(field + " is required")
	case "max":
		if fe.Kind() == reflect.String {
			return InvalidRequest(fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		}
		return InvalidRequest(fmt.Sprintf("%s must be at most %s", field, fe.Param()))
	case "min", "gte":
		return InvalidRequest(fmt.Sprintf("%s must be at least %s", field, fe.Param()))
	case "lte":
		return InvalidRequest(fmt.Sprintf("%s must be at most %s", field, fe.Param()))
	case "storable":
		return InvalidRequest(field + " contains invalid characters")
	case "datetime":
		return InvalidRequest(fmt.Sprintf("%s must match %s", field, fe.Param()))
	}
	return InvalidRequest(field + " is invalid")
}
