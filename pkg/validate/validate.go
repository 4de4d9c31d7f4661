// Package validate runs struct-tag validation (go-playground/validator) and
// flattens the result into a field → message map keyed by JSON names.
//
//	type Input struct {
//	    Name  string   `json:"name"  validate:"required"`
//	    Email string   `json:"email" validate:"required,email"`
//	    Price *float64 `json:"price" validate:"required,gte=0"`
//	    Role  string   `json:"role"  validate:"omitempty,oneof=customer shop agent"`
//	}
//
//	if errs := validate.Struct(in); validate.HasErrors(errs) { ... }
//
// Nested fields are reported with their JSON path, e.g. "items[0].quantity".
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	instance *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		instance.RegisterTagNameFunc(jsonFieldName)
	})
	return instance
}

// Struct validates v and returns a map of field → message, or nil when v
// is valid. Non-struct input yields nil.
func Struct(v interface{}) map[string]string {
	err := engine().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := fieldPath(fe.Namespace())
		if _, seen := out[field]; seen {
			continue
		}
		out[field] = message(field, fe)
	}
	return out
}

// HasErrors reports whether errs has any entries.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

func message(field string, fe validator.FieldError) string {
	name := field
	if i := strings.LastIndexAny(name, ".]"); i >= 0 && i+1 < len(name) {
		name = name[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", name)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", name)
	case "oneof":
		return fmt.Sprintf("The %s must be one of: %s.", name, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gte":
		return fmt.Sprintf("The %s must be at least %s.", name, fe.Param())
	case "gt":
		return fmt.Sprintf("The %s must be greater than %s.", name, fe.Param())
	case "lte":
		return fmt.Sprintf("The %s may not be greater than %s.", name, fe.Param())
	case "min":
		if isCollection(fe.Kind()) {
			return fmt.Sprintf("The %s must have at least %s items.", name, fe.Param())
		}
		return fmt.Sprintf("The %s must be at least %s.", name, fe.Param())
	case "max":
		return fmt.Sprintf("The %s may not be greater than %s.", name, fe.Param())
	case "latitude", "longitude":
		return fmt.Sprintf("The %s must be a valid %s.", name, fe.Tag())
	default:
		return fmt.Sprintf("The %s field is invalid.", name)
	}
}

func isCollection(k reflect.Kind) bool {
	return k == reflect.Slice || k == reflect.Array || k == reflect.Map
}

// fieldPath drops the root struct name from a validator namespace:
// "OrderInput.items[0].price" → "items[0].price".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func jsonFieldName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "-" {
		return "-"
	}
	name := strings.SplitN(tag, ",", 2)[0]
	if name == "" {
		return f.Name
	}
	return name
}
