package forms

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/feedmill/feedadmin/internal/models"
)

// Engine drives a schema form: one Field per spec, a focus cursor, and
// validation state. Values are merged into a fresh map on every read; the
// engine never mutates the caller's initial values.
type Engine struct {
	schema      models.Schema
	fields      []*Field
	focus       int
	optionsData map[string][]models.Option

	onValidity func(bool)
	lastValid  *bool
}

// New builds an engine from a schema, the entity's current values, and
// options data for select fields resolved via options_from. The schema is
// validated structurally; a broken schema is a caller bug.
func New(schema models.Schema, initial map[string]any, optionsData map[string][]models.Option) (*Engine, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		schema:      schema,
		optionsData: optionsData,
		focus:       -1,
	}
	for _, spec := range schema {
		var current any
		if initial != nil {
			if v, ok := initial[spec.Key]; ok {
				current = v
			}
		}
		e.fields = append(e.fields, newField(spec, current, optionsData))
	}
	e.focusFirst()
	return e, nil
}

// OnValidityChange registers a callback fired with the overall validity,
// eagerly on registration and on every change afterwards, independent of
// touched state. Parents use it to gate a submit control before the user
// has interacted at all.
func (e *Engine) OnValidityChange(fn func(bool)) {
	e.onValidity = fn
	e.lastValid = nil
	e.emitValidity()
}

// Fields returns the live field states, in schema order.
func (e *Engine) Fields() []*Field { return e.fields }

// FocusedIndex returns the focus cursor, -1 when nothing is focusable.
func (e *Engine) FocusedIndex() int { return e.focus }

// Values returns a fresh map of field key to current typed value.
func (e *Engine) Values() map[string]any {
	values := make(map[string]any, len(e.fields))
	for _, f := range e.fields {
		values[f.Spec.Key] = f.Value(e.optionsData)
	}
	return values
}

// Errors returns every field's validation message, keyed by field key.
// Errors exist internally for all fields at all times; touched gating is a
// display concern (VisibleError).
func (e *Engine) Errors() map[string]string {
	errs := make(map[string]string)
	for _, f := range e.fields {
		if msg := ValidateField(f.Spec, f.Value(e.optionsData)); msg != "" {
			errs[f.Spec.Key] = msg
		}
	}
	return errs
}

// Valid reports whether every field passes validation.
func (e *Engine) Valid() bool {
	for _, f := range e.fields {
		if ValidateField(f.Spec, f.Value(e.optionsData)) != "" {
			return false
		}
	}
	return true
}

// VisibleError returns the message to render for a field: its error when
// the field has been touched, "" otherwise.
func (e *Engine) VisibleError(key string) string {
	for _, f := range e.fields {
		if f.Spec.Key != key {
			continue
		}
		if !f.touched {
			return ""
		}
		return ValidateField(f.Spec, f.Value(e.optionsData))
	}
	return ""
}

// TouchAll marks every field touched. Called on a submit attempt so all
// errors become visible at once.
func (e *Engine) TouchAll() {
	for _, f := range e.fields {
		f.touched = true
	}
}

// FocusNext blurs the current field (marking it touched) and focuses the
// next editable one.
func (e *Engine) FocusNext() tea.Cmd {
	return e.moveFocus(1)
}

// FocusPrev blurs the current field and focuses the previous editable one.
func (e *Engine) FocusPrev() tea.Cmd {
	return e.moveFocus(-1)
}

func (e *Engine) moveFocus(delta int) tea.Cmd {
	if len(e.fields) == 0 {
		return nil
	}
	if e.focus >= 0 {
		e.fields[e.focus].blur()
	}
	next := e.focus
	for range e.fields {
		next += delta
		if next >= len(e.fields) {
			next = 0
		}
		if next < 0 {
			next = len(e.fields) - 1
		}
		if e.fields[next].Editable() {
			e.focus = next
			defer e.emitValidity()
			return e.fields[next].focus()
		}
	}
	e.focus = -1
	e.emitValidity()
	return nil
}

func (e *Engine) focusFirst() {
	e.focus = -1
	for i, f := range e.fields {
		if f.Editable() {
			e.focus = i
			_ = f.focus()
			break
		}
	}
}

// Update routes a message to the focused field. Non-editable fields never
// receive edit events. Every edit recomputes validity and notifies the
// listener when it changed.
func (e *Engine) Update(msg tea.Msg) tea.Cmd {
	key, isKey := msg.(tea.KeyMsg)
	if !isKey {
		return e.updateFocusedInput(msg)
	}

	switch key.String() {
	case "tab", "down":
		return e.FocusNext()
	case "shift+tab", "up":
		return e.FocusPrev()
	}

	if e.focus < 0 || e.focus >= len(e.fields) {
		return nil
	}
	f := e.fields[e.focus]
	if !f.Editable() {
		return nil
	}

	defer e.emitValidity()

	switch f.Spec.Type {
	case models.FieldTypeBoolean:
		if key.String() == " " || key.String() == "enter" {
			f.toggle()
		}
		return nil
	case models.FieldTypeSelect:
		switch key.String() {
		case "left":
			f.cycleOption(-1, e.optionsData)
		case "right", " ":
			f.cycleOption(1, e.optionsData)
		}
		return nil
	case models.FieldTypeSecret:
		if key.String() == "ctrl+r" {
			f.ToggleSecret()
			return nil
		}
	}

	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return cmd
}

func (e *Engine) updateFocusedInput(msg tea.Msg) tea.Cmd {
	if e.focus < 0 || e.focus >= len(e.fields) {
		return nil
	}
	f := e.fields[e.focus]
	switch f.Spec.Type {
	case models.FieldTypeBoolean, models.FieldTypeSelect:
		return nil
	}
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return cmd
}

func (e *Engine) emitValidity() {
	if e.onValidity == nil {
		return
	}
	valid := e.Valid()
	if e.lastValid != nil && *e.lastValid == valid {
		return
	}
	e.lastValid = &valid
	e.onValidity(valid)
}
