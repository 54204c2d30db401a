// Package forms renders input controls from a backend-supplied field schema
// and tracks per-field touched/validation state.
package forms

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/feedmill/feedadmin/internal/models"
)

// Validation messages. Bounds messages include the violated limit.
const (
	msgRequired      = "required"
	msgInvalidNumber = "must be a number"
)

// ValidateField checks one value against its spec. It returns the error
// message to display, or "" when the value passes. Integer bounds only run
// on non-empty values.
func ValidateField(spec models.FieldSpec, value any) string {
	text := valueText(value)
	empty := strings.TrimSpace(text) == ""

	if spec.Type == models.FieldTypeBoolean {
		// Booleans are always set; required cannot fail.
		return ""
	}

	if empty {
		if spec.Required {
			return msgRequired
		}
		return ""
	}

	if spec.Type == models.FieldTypeInteger {
		n, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil {
			return msgInvalidNumber
		}
		if spec.Min != nil && n < *spec.Min {
			return fmt.Sprintf("must be at least %d", *spec.Min)
		}
		if spec.Max != nil && n > *spec.Max {
			return fmt.Sprintf("must be at most %d", *spec.Max)
		}
	}

	return ""
}

// valueText normalizes a value to its text form for emptiness checks and
// integer parsing. JSON decoding hands numbers over as float64.
func valueText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// valueBool coerces a value to boolean for toggle fields.
func valueBool(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return v == "true" || v == "1"
	case float64:
		return v != 0
	case int:
		return v != 0
	default:
		return false
	}
}
