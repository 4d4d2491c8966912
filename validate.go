package bookshelf

import (
	"fmt"
	"reflect"
	"strconv"
)

// Validate checks a model instance against its schema.
// Returns a slice of ValidationError for any fields that fail validation.
func Validate(model interface{}, schema *Schema) []ValidationError {
	v := reflect.Indirect(reflect.ValueOf(model))
	if v.Kind() != reflect.Struct {
		return []ValidationError{{Field: schema.ModelName, Message: fmt.Sprintf("expected struct, got %s", v.Kind())}}
	}

	var errs []ValidationError
	for _, fs := range schema.Fields {
		fv := v.FieldByName(fs.Name)
		if !fv.IsValid() {
			continue
		}

		if fs.Required && fv.IsZero() {
			errs = append(errs, ValidationError{Field: fs.BSONName, Message: "field is required"})
			continue
		}
		if fv.IsZero() {
			continue
		}

		if len(fs.Enum) > 0 {
			s := stringValue(fv)
			if !contains(fs.Enum, s) {
				errs = append(errs, ValidationError{
					Field:   fs.BSONName,
					Message: fmt.Sprintf("value %q is not in enum %v", s, fs.Enum),
				})
			}
		}

		if fs.Min == nil && fs.Max == nil {
			continue
		}
		n, what, ok := measure(fv)
		if !ok {
			continue
		}
		if fs.Min != nil && n < *fs.Min {
			errs = append(errs, ValidationError{
				Field:   fs.BSONName,
				Message: fmt.Sprintf("%s %s is less than minimum %s", what, formatNum(n), formatNum(*fs.Min)),
			})
		}
		if fs.Max != nil && n > *fs.Max {
			errs = append(errs, ValidationError{
				Field:   fs.BSONName,
				Message: fmt.Sprintf("%s %s exceeds maximum %s", what, formatNum(n), formatNum(*fs.Max)),
			})
		}
	}

	return errs
}

// measure returns the number min/max rules compare against: the length of a
// string or the value of a number.
func measure(v reflect.Value) (float64, string, bool) {
	switch v.Kind() {
	case reflect.String:
		return float64(v.Len()), "length", true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), "value", true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), "value", true
	case reflect.Float32, reflect.Float64:
		return v.Float(), "value", true
	default:
		return 0, "", false
	}
}

func stringValue(v reflect.Value) string {
	if v.Kind() == reflect.String {
		return v.String()
	}
	return fmt.Sprintf("%v", v.Interface())
}

func formatNum(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
