// Package validation checks input structs against their validate tags and
// reports the first failure as a model.ValidationError.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mcoot/friendfinder/internal/model"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON name so messages match what callers sent
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Struct validates v. Only the first violated constraint is reported.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	return toValidationError(verrs[0])
}

func toValidationError(fe validator.FieldError) *model.ValidationError {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return model.NewValidationError(field, "%s is required", field)
	case "min":
		return model.NewValidationError(field, "%s length must be at least %s characters long", field, fe.Param())
	case "max":
		return model.NewValidationError(field, "%s length must be at most %s characters long", field, fe.Param())
	case "email":
		return model.NewValidationError(field, "%s must be a valid email", field)
	case "gte":
		return model.NewValidationError(field, "%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return model.NewValidationError(field, "%s must be less than or equal to %s", field, fe.Param())
	case "gt":
		return model.NewValidationError(field, "%s must be greater than %s", field, fe.Param())
	default:
		return model.NewValidationError(field, "%s is invalid", field)
	}
}
