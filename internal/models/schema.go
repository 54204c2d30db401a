package models

import (
	"errors"
	"fmt"
)

// FieldType identifies the control and validation rules for a schema field.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeInteger FieldType = "integer"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypePath    FieldType = "path"
	FieldTypeSelect  FieldType = "select"
	FieldTypeSecret  FieldType = "secret"
)

// Schema errors.
var (
	ErrDuplicateFieldKey = errors.New("duplicate field key")
	ErrUnknownFieldType  = errors.New("unknown field type")
)

// Option is one selectable choice for a select field.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FieldSpec is the backend-supplied description of one form input. The UI
// never defines schemas of its own; it renders whatever the server sends.
type FieldSpec struct {
	// Key is unique within one schema and names the config entry.
	Key string `json:"key"`

	// Type selects the rendered control and validation rules.
	Type FieldType `json:"type"`

	// Label is the human-readable field name.
	Label string `json:"label"`

	// Required marks fields that must be non-empty to submit.
	Required bool `json:"required,omitempty"`

	// Min and Max bound integer fields. Meaningless for other types.
	Min *int `json:"min,omitempty"`
	Max *int `json:"max,omitempty"`

	// Options is the static choice list for select fields.
	Options []Option `json:"options,omitempty"`

	// OptionsFrom names a key in caller-supplied options data that the
	// choice list is resolved from at render time.
	OptionsFrom string `json:"options_from,omitempty"`

	// Default is the value used when no current value exists.
	Default any `json:"default,omitempty"`

	// Editable is false for fields the consumer locks (env-sourced values).
	Editable bool `json:"editable"`

	// EnvVar names the environment variable the value is sourced from,
	// when the deployment pins it outside the UI.
	EnvVar string `json:"env_var,omitempty"`
}

// Schema is an ordered sequence of field specs for one entity type.
type Schema []FieldSpec

// Validate checks structural invariants: key uniqueness, known types, and
// bounds only on integer fields.
func (s Schema) Validate() error {
	v := &ValidationErrors{}
	seen := make(map[string]bool, len(s))
	for i, field := range s {
		ref := field.Key
		if ref == "" {
			ref = fmt.Sprintf("[%d]", i)
			v.AddMessage(ref, "key is required")
		}
		if seen[field.Key] {
			v.Add(ref, ErrDuplicateFieldKey)
		}
		seen[field.Key] = true

		switch field.Type {
		case FieldTypeString, FieldTypeInteger, FieldTypeBoolean,
			FieldTypePath, FieldTypeSelect, FieldTypeSecret:
		default:
			v.Add(ref, fmt.Errorf("%w: %q", ErrUnknownFieldType, field.Type))
		}

		if field.Type != FieldTypeInteger && (field.Min != nil || field.Max != nil) {
			v.AddMessage(ref, "min/max only apply to integer fields")
		}
		if field.Min != nil && field.Max != nil && *field.Min > *field.Max {
			v.AddMessage(ref, "min exceeds max")
		}
	}
	return v.Err()
}

// Field returns the spec for a key, if present.
func (s Schema) Field(key string) (FieldSpec, bool) {
	for _, field := range s {
		if field.Key == key {
			return field, true
		}
	}
	return FieldSpec{}, false
}
