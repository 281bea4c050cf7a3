package env

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const redacted = "********"

type Options struct {
	// Redact replaces values of fields tagged secret:"true".
	Redact bool
	// IncludeZero keeps fields whose value is the zero value.
	IncludeZero bool
}

// MarshalEnv reflects over config structs and renders .env content from
// their env tags. Keys are sorted.
func MarshalEnv(opts Options, configs ...any) (string, error) {
	values := make(map[string]string)

	for _, c := range configs {
		v := reflect.ValueOf(c)
		if v.Kind() == reflect.Ptr {
			if v.IsNil() {
				continue
			}
			v = v.Elem()
		}
		if v.Kind() != reflect.Struct {
			return "", fmt.Errorf("marshal env: expected struct, got %s", v.Kind())
		}
		t := v.Type()

		for i := 0; i < v.NumField(); i++ {
			field := t.Field(i)
			tag := field.Tag.Get("env")
			if tag == "" || !field.IsExported() {
				continue
			}

			// "KEY,required,notEmpty" or "KEY"
			key := strings.Split(tag, ",")[0]
			if key == "" {
				continue
			}

			val := v.Field(i)
			if !opts.IncludeZero && isZeroValue(val) {
				continue
			}

			str := formatValue(val)
			if opts.Redact && field.Tag.Get("secret") == "true" && str != "" {
				str = redacted
			}
			values[key] = str
		}
	}

	if len(values) == 0 {
		return "", nil
	}

	out, err := godotenv.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("marshal env: %w", err)
	}
	return out + "\n", nil
}

// isZeroValue checks if a reflect.Value is the zero value for its type
func isZeroValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map:
		return v.IsNil()
	default:
		return v.IsZero()
	}
}

var durationType = reflect.TypeOf(time.Duration(0))

func formatValue(v reflect.Value) string {
	if v.Type() == durationType {
		return time.Duration(v.Int()).String()
	}
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}
