package forms

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/feedmill/feedadmin/internal/models"
)

// Styles carries the lipgloss styles the engine renders with. The UI layer
// builds one from its active theme so forms stay theme-agnostic.
type Styles struct {
	Label   lipgloss.Style
	Value   lipgloss.Style
	Muted   lipgloss.Style
	Error   lipgloss.Style
	Badge   lipgloss.Style
	Focused lipgloss.Style
}

// View renders the whole form: label, control, and the error line for
// touched invalid fields.
func (e *Engine) View(st Styles, width int) string {
	var b strings.Builder
	for i, f := range e.fields {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(e.renderField(st, f, i == e.focus, width))
	}
	return b.String()
}

func (e *Engine) renderField(st Styles, f *Field, focused bool, width int) string {
	var lines []string

	label := f.Spec.Label
	if label == "" {
		label = f.Spec.Key
	}
	header := st.Label.Render(label)
	if f.Spec.Required {
		header += st.Error.Render(" *")
	}
	if f.Spec.EnvVar != "" {
		header += " " + st.Badge.Render("env:"+f.Spec.EnvVar)
	}
	lines = append(lines, header)

	control := e.renderControl(st, f, focused)
	cursor := "  "
	if focused {
		cursor = st.Focused.Render("> ")
	}
	lines = append(lines, cursor+control)

	if msg := e.VisibleError(f.Spec.Key); msg != "" {
		lines = append(lines, "  "+st.Error.Render(msg))
	}

	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}

func (e *Engine) renderControl(st Styles, f *Field, focused bool) string {
	if !f.Editable() {
		return st.Muted.Render(e.disabledText(f))
	}

	switch f.Spec.Type {
	case models.FieldTypeBoolean:
		if f.boolValue {
			return st.Value.Render("[x] on")
		}
		return st.Muted.Render("[ ] off")

	case models.FieldTypeSelect:
		options := f.resolveOptions(e.optionsData)
		label := "select..."
		if f.optionIdx >= 0 && f.optionIdx < len(options) {
			label = options[f.optionIdx].Label
			return st.Value.Render(fmt.Sprintf("‹ %s ›", label))
		}
		return st.Muted.Render(fmt.Sprintf("‹ %s ›", label))

	case models.FieldTypePath:
		return st.Muted.Render("⌂ ") + f.input.View()

	case models.FieldTypeSecret:
		hint := "[ctrl+r] show"
		if f.secretVisible {
			hint = "[ctrl+r] hide"
		}
		return f.input.View() + "  " + st.Muted.Render(hint)

	default:
		return f.input.View()
	}
}

// disabledText shows the effective value of a locked field, masking
// secrets.
func (e *Engine) disabledText(f *Field) string {
	if f.Spec.Type == models.FieldTypeSecret {
		return "••••••••"
	}
	text := valueText(f.Value(e.optionsData))
	if text == "" {
		text = "(unset)"
	}
	return text
}
