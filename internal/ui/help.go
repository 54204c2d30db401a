package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type helpItem struct {
	key  string
	desc string
}

type helpSection struct {
	title string
	items []helpItem
}

func (m *Model) renderHelpOverlay(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}

	sections := helpForView(m.active)
	lines := make([]string, 0, 48)
	lines = append(lines, m.st.Accent.Bold(true).Render("Help"), "")

	for _, sec := range sections {
		if sec.title != "" {
			lines = append(lines, m.st.Text.Bold(true).Render(sec.title))
		}
		for _, it := range sec.items {
			lines = append(lines, "  "+m.st.Accent.Render(it.key)+"  "+m.st.Text.Render(it.desc))
		}
		lines = append(lines, "")
	}
	lines = append(lines, m.st.Muted.Render("Dismiss: ? or Esc"))

	panelWidth := width - 10
	if panelWidth > 80 {
		panelWidth = 80
	}
	if panelWidth < 40 {
		panelWidth = 40
	}
	panel := m.st.Border.Width(panelWidth).Render(strings.Join(lines, "\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, panel)
}

func helpForView(id ViewID) []helpSection {
	global := helpSection{
		title: "Global",
		items: []helpItem{
			{key: "1-5 / Tab", desc: "switch screen"},
			{key: "T", desc: "cycle theme"},
			{key: "R", desc: "reload current screen"},
			{key: "?", desc: "toggle help"},
			{key: "q / Ctrl+C", desc: "quit"},
		},
	}
	list := helpSection{
		title: "List",
		items: []helpItem{
			{key: "j/k", desc: "move cursor"},
			{key: "n", desc: "new"},
			{key: "Enter / e", desc: "edit"},
			{key: "d", desc: "delete (selection when active)"},
		},
	}

	switch id {
	case ViewFeeds:
		return []helpSection{global, list, {title: "Feeds", items: []helpItem{
			{key: "Space", desc: "select row"},
			{key: "a", desc: "select all"},
			{key: "r", desc: "run now"},
			{key: "t", desc: "toggle active"},
		}}}
	case ViewSources:
		return []helpSection{global, list, {title: "Sources", items: []helpItem{
			{key: "p", desc: "preview source"},
			{key: "h/l", desc: "change page"},
		}}}
	case ViewExporters:
		return []helpSection{global, list, {title: "Exporters", items: []helpItem{
			{key: "t", desc: "enable/disable"},
		}}}
	default:
		return []helpSection{global, list}
	}
}
