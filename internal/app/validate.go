package app

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"github.com/iconpropertiesg-arch/iconproperties-sub001/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report payload keys, not Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateInput rejects payloads missing required fields before any derivation runs.
func validateInput(in CreatePropertyInput) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return domain.ErrInvalidRequest.Msg("invalid request: %s", err)
	}
	fields := lo.Uniq(lo.Map(ve, func(fe validator.FieldError, _ int) string { return fe.Field() }))
	return domain.ErrMissingField.
		Msg("Missing required fields: %s", strings.Join(fields, ", ")).
		WithFields(fields...)
}
