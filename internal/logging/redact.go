package logging

import (
	"strings"

	"github.com/feedmill/feedadmin/internal/models"
)

// RedactedValue replaces sensitive values in log output.
const RedactedValue = "[REDACTED]"

// Field names treated as sensitive regardless of schema type.
var sensitiveFields = []string{
	"password",
	"secret",
	"token",
	"api_key",
	"apikey",
	"credential",
	"access_key",
}

// IsSensitiveField reports whether a field name looks like it holds a
// credential.
func IsSensitiveField(name string) bool {
	lower := strings.ToLower(name)
	for _, field := range sensitiveFields {
		if strings.Contains(lower, field) {
			return true
		}
	}
	return false
}

// RedactConfig returns a copy of a config values map safe for logging.
// Fields the schema declares as secret are masked, as is anything with a
// sensitive-looking key.
func RedactConfig(schema models.Schema, values map[string]any) map[string]any {
	if values == nil {
		return nil
	}
	result := make(map[string]any, len(values))
	for key, value := range values {
		if spec, ok := schema.Field(key); ok && spec.Type == models.FieldTypeSecret {
			result[key] = RedactedValue
			continue
		}
		if IsSensitiveField(key) {
			result[key] = RedactedValue
			continue
		}
		if nested, ok := value.(map[string]any); ok {
			result[key] = RedactConfig(nil, nested)
			continue
		}
		result[key] = value
	}
	return result
}
