package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/feedmill/feedadmin/internal/forms"
	"github.com/feedmill/feedadmin/internal/ui/styles"
)

// formStyles adapts the app theme to the style set the form renderer
// expects.
func formStyles(st styles.Styles) forms.Styles {
	return forms.Styles{
		Label:   st.Text,
		Value:   st.Accent,
		Muted:   st.Muted,
		Error:   st.Error,
		Badge:   st.Badge,
		Focused: st.Selected,
	}
}

// formModal hosts a schema-driven form over the current screen. Submit is
// only invoked when every field validates; an early attempt touches all
// fields so their errors become visible.
type formModal struct {
	title   string
	engine  *forms.Engine
	submit  func(values map[string]any) tea.Cmd
	pending func() bool
	footer  string
}

func newFormModal(title string, engine *forms.Engine, submit func(map[string]any) tea.Cmd) *formModal {
	return &formModal{title: title, engine: engine, submit: submit}
}

// Update handles modal keys. It returns done=true when the modal should
// close without submitting.
func (m *formModal) Update(msg tea.Msg) (cmd tea.Cmd, done bool) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil, false
	}
	if m.pending != nil && m.pending() {
		// Writes are not interruptible from the keyboard.
		return nil, false
	}
	switch key.String() {
	case "esc":
		return nil, true
	case "ctrl+s":
		if !m.engine.Valid() {
			m.engine.TouchAll()
			return nil, false
		}
		return m.submit(m.engine.Values()), false
	}
	return m.engine.Update(msg), false
}

func (m *formModal) View(st styles.Styles, width int) string {
	var b strings.Builder
	b.WriteString(st.Header.Render(m.title))
	b.WriteString("\n\n")
	b.WriteString(m.engine.View(formStyles(st), formWidth(width)))
	b.WriteString("\n")
	if m.footer != "" {
		b.WriteString(st.Muted.Render(m.footer))
		b.WriteString("\n")
	}
	hint := "ctrl+s save · esc cancel"
	if m.pending != nil && m.pending() {
		hint = "saving…"
	}
	b.WriteString(st.Muted.Render(hint))
	return boxModal(st, b.String(), width)
}

// confirmModal is a yes/no prompt guarding destructive actions.
type confirmModal struct {
	title   string
	body    string
	confirm func() tea.Cmd
	pending func() bool
}

func (m *confirmModal) Update(msg tea.Msg) (cmd tea.Cmd, done bool) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil, false
	}
	if m.pending != nil && m.pending() {
		return nil, false
	}
	switch key.String() {
	case "y", "enter":
		return m.confirm(), false
	case "n", "esc":
		return nil, true
	}
	return nil, false
}

func (m *confirmModal) View(st styles.Styles, width int) string {
	var b strings.Builder
	b.WriteString(st.Warning.Render(m.title))
	b.WriteString("\n\n")
	b.WriteString(st.Text.Render(m.body))
	b.WriteString("\n\n")
	hint := "y confirm · n cancel"
	if m.pending != nil && m.pending() {
		hint = "working…"
	}
	b.WriteString(st.Muted.Render(hint))
	return boxModal(st, b.String(), width)
}

// formWidth is the content width inside a modal box.
func formWidth(width int) int {
	return modalWidth(width) - 4
}

func modalWidth(width int) int {
	maxW := width - 8
	if maxW > 72 {
		maxW = 72
	}
	if maxW < 24 {
		maxW = 24
	}
	return maxW
}

func boxModal(st styles.Styles, content string, width int) string {
	box := st.Border.Width(modalWidth(width)).Render(content)
	return lipgloss.Place(width, lipgloss.Height(box)+2, lipgloss.Center, lipgloss.Top, box)
}
