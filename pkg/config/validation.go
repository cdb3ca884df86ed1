package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// formatValidationError converts a validator error into a single-line
// message naming the offending field and tag.
func formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok && len(validationErrs) > 0 {
		e := validationErrs[0]
		return fmt.Errorf("%s: validation failed on %q tag (value: %v)", e.Namespace(), e.Tag(), e.Value())
	}
	return err
}
