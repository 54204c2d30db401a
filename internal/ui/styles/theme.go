// Package styles defines the feedadmin TUI themes and shared style sets.
package styles

import "github.com/charmbracelet/lipgloss"

// BaseColors defines global UI colors.
type BaseColors struct {
	Background string
	Foreground string
	Muted      string
	Accent     string
	Border     string
}

// StatusColors defines colors for run and mutation outcomes.
type StatusColors struct {
	Success string
	Warning string
	Error   string
	Running string
}

// ChromeColors defines non-content UI colors.
type ChromeColors struct {
	Header       string
	Footer       string
	SelectedRow  string
	Banner       string
	BannerAccent string
}

// Theme defines the feedadmin TUI style tokens.
type Theme struct {
	Name string

	Base   BaseColors
	Status StatusColors
	Chrome ChromeColors
}

// Themes lists available palettes by name.
var Themes = map[string]Theme{
	"dark":          DarkTheme,
	"light":         LightTheme,
	"high-contrast": HighContrastTheme,
}

// Get resolves a theme by name, falling back to dark.
func Get(name string) Theme {
	if theme, ok := Themes[name]; ok {
		return theme
	}
	return DarkTheme
}

// Next cycles to the following theme name in a stable order.
func Next(name string) string {
	order := []string{"dark", "light", "high-contrast"}
	for i, candidate := range order {
		if candidate == name {
			return order[(i+1)%len(order)]
		}
	}
	return order[0]
}

// Styles is the resolved style set views render with.
type Styles struct {
	Theme Theme

	Text     lipgloss.Style
	Muted    lipgloss.Style
	Accent   lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Running  lipgloss.Style
	Header   lipgloss.Style
	Footer   lipgloss.Style
	Selected lipgloss.Style
	Banner   lipgloss.Style
	Badge    lipgloss.Style
	Border   lipgloss.Style
}

// New resolves the style set for a theme.
func New(theme Theme) Styles {
	return Styles{
		Theme:   theme,
		Text:    lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Base.Foreground)),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Base.Muted)),
		Accent:  lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Base.Accent)),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Status.Success)),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Status.Warning)),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Status.Error)),
		Running: lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Status.Running)),
		Header:  lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Chrome.Header)).Bold(true),
		Footer:  lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Chrome.Footer)),
		Selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Chrome.SelectedRow)).
			Bold(true),
		Banner: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Chrome.BannerAccent)).
			Background(lipgloss.Color(theme.Chrome.Banner)).
			Padding(0, 1),
		Badge: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Base.Background)).
			Background(lipgloss.Color(theme.Base.Muted)).
			Padding(0, 1),
		Border: lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Base.Border)),
	}
}
