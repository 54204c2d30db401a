package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func intp(n int) *int { return &n }

func TestSchemaValidateAcceptsWellFormed(t *testing.T) {
	s := Schema{
		{Key: "name", Type: FieldTypeString, Label: "Name", Required: true, Editable: true},
		{Key: "interval_minutes", Type: FieldTypeInteger, Label: "Interval", Min: intp(5), Max: intp(1440), Editable: true},
		{Key: "active", Type: FieldTypeBoolean, Label: "Active", Default: true, Editable: true},
		{Key: "source_id", Type: FieldTypeSelect, Label: "Source", OptionsFrom: "sources", Editable: true},
		{Key: "api_key", Type: FieldTypeSecret, Label: "API key", Editable: true},
		{Key: "output_path", Type: FieldTypePath, Label: "Output", Editable: true},
	}
	require.NoError(t, s.Validate())
}

func TestSchemaValidateRejectsDuplicateKeys(t *testing.T) {
	s := Schema{
		{Key: "name", Type: FieldTypeString, Editable: true},
		{Key: "name", Type: FieldTypeString, Editable: true},
	}
	err := s.Validate()
	require.Error(t, err)
	require.ErrorIs(t, err, ErrDuplicateFieldKey)

	var verrs *ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs.Errors, 1)
	require.Equal(t, "name", verrs.Errors[0].Field)
}

func TestSchemaValidateRejectsUnknownType(t *testing.T) {
	s := Schema{{Key: "color", Type: FieldType("swatch"), Editable: true}}
	err := s.Validate()
	require.Error(t, err)
	require.ErrorIs(t, err, ErrUnknownFieldType)
	require.Contains(t, err.Error(), "swatch")
}

func TestSchemaValidateRejectsMissingKey(t *testing.T) {
	s := Schema{{Type: FieldTypeString, Editable: true}}
	err := s.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "key is required")
}

func TestSchemaValidateBoundsOnlyOnIntegers(t *testing.T) {
	s := Schema{{Key: "name", Type: FieldTypeString, Min: intp(1), Editable: true}}
	err := s.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "min/max only apply to integer fields")

	ok := Schema{{Key: "count", Type: FieldTypeInteger, Min: intp(1), Max: intp(10), Editable: true}}
	require.NoError(t, ok.Validate())
}

func TestSchemaValidateRejectsInvertedBounds(t *testing.T) {
	s := Schema{{Key: "count", Type: FieldTypeInteger, Min: intp(10), Max: intp(5), Editable: true}}
	err := s.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "min exceeds max")
}

func TestSchemaValidateCollectsAllFailures(t *testing.T) {
	s := Schema{
		{Key: "a", Type: FieldType("bogus")},
		{Key: "a", Type: FieldTypeString},
		{Key: "b", Type: FieldTypeBoolean, Max: intp(3)},
	}
	err := s.Validate()
	require.Error(t, err)

	var verrs *ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs.Errors, 3)
}

func TestSchemaField(t *testing.T) {
	s := Schema{
		{Key: "name", Type: FieldTypeString},
		{Key: "url", Type: FieldTypeString},
	}

	field, ok := s.Field("url")
	require.True(t, ok)
	require.Equal(t, "url", field.Key)

	_, ok = s.Field("missing")
	require.False(t, ok)
}
