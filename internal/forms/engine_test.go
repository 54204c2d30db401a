package forms

import (
	"testing"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/feedmill/feedadmin/internal/models"
)

func intPtr(n int) *int { return &n }

func testSchema() models.Schema {
	return models.Schema{
		{Key: "name", Type: models.FieldTypeString, Label: "Name", Required: true, Editable: true},
		{Key: "limit", Type: models.FieldTypeInteger, Label: "Limit", Min: intPtr(1), Max: intPtr(10), Editable: true},
		{Key: "enabled", Type: models.FieldTypeBoolean, Label: "Enabled", Default: true, Editable: true},
	}
}

func TestValidateFieldRequired(t *testing.T) {
	spec := models.FieldSpec{Key: "name", Type: models.FieldTypeString, Required: true}

	require.Equal(t, "required", ValidateField(spec, nil))
	require.Equal(t, "required", ValidateField(spec, ""))
	require.Equal(t, "", ValidateField(spec, "anything"))
}

func TestValidateFieldIntegerBounds(t *testing.T) {
	spec := models.FieldSpec{Key: "limit", Type: models.FieldTypeInteger, Min: intPtr(1), Max: intPtr(10)}

	require.Equal(t, "must be at least 1", ValidateField(spec, 0))
	require.Equal(t, "must be at most 10", ValidateField(spec, 11))
	require.Equal(t, "", ValidateField(spec, 1))
	require.Equal(t, "", ValidateField(spec, 10))
	require.Equal(t, "must be a number", ValidateField(spec, "abc"))
	// Bounds only run on non-empty values.
	require.Equal(t, "", ValidateField(spec, ""))
}

func TestSchemaRejectsDuplicateKeys(t *testing.T) {
	schema := models.Schema{
		{Key: "url", Type: models.FieldTypeString},
		{Key: "url", Type: models.FieldTypeString},
	}
	_, err := New(schema, nil, nil)
	require.ErrorIs(t, err, models.ErrDuplicateFieldKey)
}

func TestTouchedGating(t *testing.T) {
	e, err := New(testSchema(), nil, nil)
	require.NoError(t, err)

	// "name" is required and empty, so the form is invalid, but the error
	// must not render before the field is blurred.
	require.False(t, e.Valid())
	require.Equal(t, "required", e.Errors()["name"])
	require.Equal(t, "", e.VisibleError("name"))

	// Tab blurs "name"; the error appears without a second edit.
	e.Update(tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, "required", e.VisibleError("name"))
}

func TestValidityEmittedEagerly(t *testing.T) {
	e, err := New(testSchema(), map[string]any{"name": "daily"}, nil)
	require.NoError(t, err)

	var emitted []bool
	e.OnValidityChange(func(valid bool) { emitted = append(emitted, valid) })

	// Emitted on registration, before any interaction.
	require.Equal(t, []bool{true}, emitted)

	// Typing an out-of-range limit flips validity exactly once.
	e.Update(tea.KeyMsg{Type: tea.KeyTab})
	e.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("0")})
	require.Equal(t, []bool{true, false}, emitted)
}

func TestValuesMergedFreshMap(t *testing.T) {
	initial := map[string]any{"name": "daily"}
	e, err := New(testSchema(), initial, nil)
	require.NoError(t, err)

	values := e.Values()
	require.Equal(t, "daily", values["name"])
	require.Equal(t, true, values["enabled"])

	// A fresh map every call; the caller's initial map is never touched.
	values["name"] = "clobbered"
	require.Equal(t, "daily", e.Values()["name"])
	require.Equal(t, "daily", initial["name"])
}

func TestDefaultResolutionOrder(t *testing.T) {
	schema := models.Schema{
		{Key: "mode", Type: models.FieldTypeString, Default: "auto", Editable: true},
		{Key: "active", Type: models.FieldTypeBoolean, Editable: true},
	}

	// Current value wins over the schema default.
	e, err := New(schema, map[string]any{"mode": "manual"}, nil)
	require.NoError(t, err)
	require.Equal(t, "manual", e.Values()["mode"])

	// Schema default wins over the type fallback.
	e, err = New(schema, nil, nil)
	require.NoError(t, err)
	require.Equal(t, "auto", e.Values()["mode"])
	require.Equal(t, false, e.Values()["active"])
}

func TestSecretVisibilityToggle(t *testing.T) {
	schema := models.Schema{
		{Key: "api_key", Type: models.FieldTypeSecret, Label: "API key", Editable: true},
	}
	e, err := New(schema, map[string]any{"api_key": "hunter2"}, nil)
	require.NoError(t, err)
	f := e.Fields()[0]

	require.False(t, f.SecretVisible())
	require.Equal(t, textinput.EchoPassword, f.input.EchoMode)

	e.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	require.True(t, f.SecretVisible())
	require.Equal(t, textinput.EchoNormal, f.input.EchoMode)
	// Toggling never alters the stored value.
	require.Equal(t, "hunter2", e.Values()["api_key"])

	e.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	require.False(t, f.SecretVisible())
	require.Equal(t, "hunter2", e.Values()["api_key"])
}

func TestSelectWithDynamicOptions(t *testing.T) {
	schema := models.Schema{
		{Key: "model", Type: models.FieldTypeSelect, Label: "Model", OptionsFrom: "models", Editable: true},
	}
	optionsData := map[string][]models.Option{
		"models": {{Value: "gpt-4", Label: "GPT-4"}},
	}
	e, err := New(schema, nil, optionsData)
	require.NoError(t, err)
	f := e.Fields()[0]

	options := f.resolveOptions(optionsData)
	require.Len(t, options, 1)
	require.Equal(t, "GPT-4", options[0].Label)

	// Starts on the placeholder; one step right lands on the only option.
	require.Equal(t, "", e.Values()["model"])
	e.Update(tea.KeyMsg{Type: tea.KeyRight})
	require.Equal(t, "gpt-4", e.Values()["model"])
}

func TestUnresolvedOptionsFromYieldsEmptyList(t *testing.T) {
	schema := models.Schema{
		{Key: "model", Type: models.FieldTypeSelect, OptionsFrom: "missing", Editable: true},
	}
	e, err := New(schema, nil, nil)
	require.NoError(t, err)

	f := e.Fields()[0]
	require.Empty(t, f.resolveOptions(nil))
	e.Update(tea.KeyMsg{Type: tea.KeyRight})
	require.Equal(t, "", e.Values()["model"])
}

func TestNonEditableFieldIgnoresEdits(t *testing.T) {
	schema := models.Schema{
		{Key: "token", Type: models.FieldTypeString, EnvVar: "FEED_TOKEN", Editable: false},
		{Key: "name", Type: models.FieldTypeString, Editable: true},
	}
	e, err := New(schema, map[string]any{"token": "locked"}, nil)
	require.NoError(t, err)

	// Focus skips the locked field entirely.
	require.Equal(t, 1, e.FocusedIndex())
	e.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	require.Equal(t, "locked", e.Values()["token"])
	require.Equal(t, "x", e.Values()["name"])
}
