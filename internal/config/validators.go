package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/idelchi/gogen/pkg/validator"
)

// registerExt adds the "ext" validator with a human-readable error message and
// reports fields by their flag name.
func registerExt(validator *validator.Validator) error {
	if err := validator.RegisterValidationAndTranslation(
		"ext",
		validateExt,
		"{0} must be a file extension such as '.txt'",
	); err != nil {
		return fmt.Errorf("registering ext validation: %w", err)
	}

	validator.Validator().RegisterTagNameFunc(func(fld reflect.StructField) string {
		const splitSize = 2

		name := strings.SplitN(fld.Tag.Get("label"), ",", splitSize)[0]
		if name == "-" {
			return fld.Name
		}

		if name != "" {
			return name
		}

		return fld.Name
	})

	return nil
}

// validateExt checks that a field is a file extension: a leading dot followed by
// at least one character and no path separators.
func validateExt(fl validator.FieldLevel) bool {
	field := fl.Field()

	if field.Kind() != reflect.String {
		return false
	}

	ext := field.String()

	return len(ext) > 1 && strings.HasPrefix(ext, ".") && !strings.ContainsAny(ext, `/\`)
}
