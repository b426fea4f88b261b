package utils

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/webhookx-io/showgate/pkg/errs"
)

var validate = newValidator()

// newValidator reports fields by their yaml names, which are the names
// users write in configuration files.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// Validate validates v by its `validate` tags. Failures are keyed by dotted
// yaml path, e.g. "cache.l1_size".
func Validate(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	validateErr := errs.NewValidateError(errs.ErrValidate)
	for _, e := range validationErrors {
		_, path, _ := strings.Cut(e.Namespace(), ".")
		validateErr.Fields[path] = formatError(e)
	}
	return validateErr
}

func formatError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required field missing"
	case "oneof":
		return fmt.Sprintf("invalid value: %v", fe.Value())
	case "gt":
		return fmt.Sprintf("value must be > %s", fe.Param())
	case "gte":
		return fmt.Sprintf("value must be >= %s", fe.Param())
	case "lte":
		return fmt.Sprintf("value must be <= %s", fe.Param())
	case "min":
		return fmt.Sprintf("length must be at least %s", fe.Param())
	}
	return fe.Error()
}
