package forms

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/feedmill/feedadmin/internal/models"
)

// Field is the live state of one schema field: its control, touched flag,
// and current value.
type Field struct {
	Spec models.FieldSpec

	input         textinput.Model
	boolValue     bool
	optionIdx     int // -1 = placeholder
	secretVisible bool
	touched       bool
}

// newField builds the control for a spec, resolving the initial value as:
// current value -> schema default -> type fallback.
func newField(spec models.FieldSpec, current any, optionsData map[string][]models.Option) *Field {
	f := &Field{Spec: spec, optionIdx: -1}

	value := current
	if value == nil {
		value = spec.Default
	}

	switch spec.Type {
	case models.FieldTypeBoolean:
		f.boolValue = valueBool(value)
	case models.FieldTypeSelect:
		want := valueText(value)
		for i, opt := range f.resolveOptions(optionsData) {
			if opt.Value == want {
				f.optionIdx = i
				break
			}
		}
	default:
		input := textinput.New()
		input.Prompt = ""
		input.SetValue(valueText(value))
		if spec.Type == models.FieldTypeSecret {
			input.EchoMode = textinput.EchoPassword
			input.EchoCharacter = '•'
		}
		if spec.Type == models.FieldTypeInteger {
			input.CharLimit = 12
		}
		f.input = input
	}
	return f
}

// resolveOptions returns the choice list: static Options, or the
// OptionsFrom key resolved against caller data. An unresolved key yields an
// empty list, not an error.
func (f *Field) resolveOptions(optionsData map[string][]models.Option) []models.Option {
	if len(f.Spec.Options) > 0 {
		return f.Spec.Options
	}
	if f.Spec.OptionsFrom != "" {
		return optionsData[f.Spec.OptionsFrom]
	}
	return nil
}

// Editable reports whether the field accepts edits. Env-sourced fields the
// consumer locked render disabled and never receive edit events.
func (f *Field) Editable() bool {
	return f.Spec.Editable || f.Spec.EnvVar == ""
}

// Value returns the field's current typed value. Integer fields parse to
// int when the text is numeric; otherwise the raw text is kept so
// validation can flag it.
func (f *Field) Value(optionsData map[string][]models.Option) any {
	switch f.Spec.Type {
	case models.FieldTypeBoolean:
		return f.boolValue
	case models.FieldTypeSelect:
		options := f.resolveOptions(optionsData)
		if f.optionIdx >= 0 && f.optionIdx < len(options) {
			return options[f.optionIdx].Value
		}
		return ""
	case models.FieldTypeInteger:
		text := strings.TrimSpace(f.input.Value())
		if n, err := strconv.Atoi(text); err == nil {
			return n
		}
		return text
	default:
		return f.input.Value()
	}
}

// Touched reports whether the field has been blurred or committed.
func (f *Field) Touched() bool { return f.touched }

// Touch marks the field as interacted-with, making its error visible.
func (f *Field) Touch() { f.touched = true }

// SecretVisible reports the per-field reveal state.
func (f *Field) SecretVisible() bool { return f.secretVisible }

// ToggleSecret flips secret visibility. The stored value never changes.
func (f *Field) ToggleSecret() {
	if f.Spec.Type != models.FieldTypeSecret {
		return
	}
	f.secretVisible = !f.secretVisible
	if f.secretVisible {
		f.input.EchoMode = textinput.EchoNormal
	} else {
		f.input.EchoMode = textinput.EchoPassword
	}
}

// toggle flips a boolean field.
func (f *Field) toggle() {
	f.boolValue = !f.boolValue
}

// cycleOption moves the select cursor by delta, wrapping through the
// placeholder position.
func (f *Field) cycleOption(delta int, optionsData map[string][]models.Option) {
	options := f.resolveOptions(optionsData)
	if len(options) == 0 {
		f.optionIdx = -1
		return
	}
	next := f.optionIdx + delta
	if next >= len(options) {
		next = -1
	}
	if next < -1 {
		next = len(options) - 1
	}
	f.optionIdx = next
}

// focus gives keyboard focus to text-based controls.
func (f *Field) focus() tea.Cmd {
	switch f.Spec.Type {
	case models.FieldTypeBoolean, models.FieldTypeSelect:
		return nil
	default:
		return f.input.Focus()
	}
}

// blur removes keyboard focus and marks the field touched.
func (f *Field) blur() {
	f.touched = true
	switch f.Spec.Type {
	case models.FieldTypeBoolean, models.FieldTypeSelect:
	default:
		f.input.Blur()
	}
}
