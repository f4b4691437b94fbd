package validation

import (
	"context"
	"reflect"

	"github.com/go-playground/validator/v10"
)

// StructValidator validates messages carrying `validate` tags. Messages
// that are not structs pass through untouched.
type StructValidator struct {
	validate *validator.Validate
}

func NewStructValidator() *StructValidator {
	return &StructValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

func (v *StructValidator) Validate(_ context.Context, msg any) error {
	if msg == nil {
		return nil
	}
	rv := reflect.ValueOf(msg)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}
	return v.validate.Struct(rv.Interface())
}
