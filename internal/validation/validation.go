// Package validation wraps the struct validator into the two-pass schema
// validation contract: the same deterministic rule set runs once at the edge
// for immediate feedback and once authoritatively inside every mutation.
package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/escolar-dev/escolar-api/internal/models"
	appErrors "github.com/escolar-dev/escolar-api/pkg/errors"
)

// New builds the shared validator instance. Field names in results follow the
// json tag so errors line up with the wire payload.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		tag := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return field.Name
		}
		return tag
	})
	// Expose the wrapped time.Time so value tags like required see the zero
	// date instead of recursing into the struct.
	v.RegisterCustomTypeFunc(func(f reflect.Value) interface{} {
		return f.Interface().(models.Date).Time
	}, models.Date{})
	return v
}

// Check validates the payload and returns a field → message map. An empty map
// means the payload is valid. Identical input always yields an identical map.
func Check(v *validator.Validate, payload interface{}) map[string]string {
	err := v.Struct(payload)
	if err == nil {
		return map[string]string{}
	}

	fields := map[string]string{}
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			fields[fe.Field()] = message(fe)
		}
		return fields
	}

	fields["_"] = err.Error()
	return fields
}

// CheckErr validates the payload and converts any failure into a typed
// validation error carrying the field detail.
func CheckErr(v *validator.Validate, payload interface{}, what string) error {
	fields := Check(v, payload)
	if len(fields) == 0 {
		return nil
	}
	return appErrors.Validation(fmt.Sprintf("invalid %s payload", what), fields)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "uuid":
		return "must be a valid identifier"
	case "datetime":
		return "must match the expected time format"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
