package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/feedmill/feedadmin/internal/api"
	"github.com/feedmill/feedadmin/internal/config"
	"github.com/feedmill/feedadmin/internal/logging"
	"github.com/feedmill/feedadmin/internal/query"
	"github.com/feedmill/feedadmin/internal/runs"
	"github.com/feedmill/feedadmin/internal/tuistate"
	"github.com/feedmill/feedadmin/internal/ui/styles"
)

const (
	defaultTick    = time.Second
	noticeLifetime = 4 * time.Second
)

// ViewID names one of the top-level screens.
type ViewID string

const (
	ViewFeeds       ViewID = "feeds"
	ViewSources     ViewID = "sources"
	ViewTags        ViewID = "tags"
	ViewConnections ViewID = "connections"
	ViewExporters   ViewID = "exporters"
)

var viewOrder = []ViewID{ViewFeeds, ViewSources, ViewTags, ViewConnections, ViewExporters}

var viewSwitchKeys = map[string]ViewID{
	"1": ViewFeeds,
	"2": ViewSources,
	"3": ViewTags,
	"4": ViewConnections,
	"5": ViewExporters,
}

// viewModel is the contract every screen implements.
type viewModel interface {
	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View(st styles.Styles, width, height int) string
	// HasModal reports whether a modal owns the keyboard, which suppresses
	// global keys other than quit.
	HasModal() bool
	Hints() string
}

// Deps bundles what every screen needs. Screens pick the API surface they
// use through their own narrow interfaces.
type Deps struct {
	Ctx     context.Context
	Cfg     *config.Config
	Client  *api.Client
	Cache   *query.Cache
	Tracker *runs.Tracker
	State   *tuistate.Manager
	Demo    bool
	Log     zerolog.Logger
}

type notice struct {
	level noticeLevel
	text  string
	at    time.Time
}

// Model is the root bubbletea model: chrome, screen switching, theme
// cycling and the shared refresh tick.
type Model struct {
	deps  *Deps
	theme string
	st    styles.Styles

	width    int
	height   int
	showHelp bool

	active  ViewID
	views   map[ViewID]viewModel
	notices []notice
}

// NewModel wires the screens and restores persisted TUI state.
func NewModel(deps *Deps) *Model {
	theme := deps.State.State().Theme
	if _, ok := styles.Themes[theme]; !ok {
		theme = tuistate.DefaultTheme
	}

	m := &Model{
		deps:  deps,
		theme: theme,
		st:    styles.New(styles.Get(theme)),
		views: make(map[ViewID]viewModel),
	}

	m.views[ViewFeeds] = newFeedsView(deps)
	m.views[ViewSources] = newSourcesView(deps)
	m.views[ViewTags] = newTagsView(deps)
	m.views[ViewConnections] = newConnectionsView(deps)
	m.views[ViewExporters] = newExportersView(deps)

	m.active = ViewID(deps.State.State().LastView)
	if _, ok := m.views[m.active]; !ok {
		m.active = ViewFeeds
	}
	return m
}

// Run starts the TUI and blocks until it exits.
func Run(deps *Deps) error {
	model := NewModel(deps)
	defer deps.Tracker.Stop()

	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.activeView().Init(), tickCmd(m.tickInterval()))
}

func (m *Model) tickInterval() time.Duration {
	if m.deps.Cfg != nil && m.deps.Cfg.TUI.RefreshInterval > 0 {
		return m.deps.Cfg.TUI.RefreshInterval
	}
	return defaultTick
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.height = typed.Height
		return m, nil
	case tickMsg:
		m.expireNotices(time.Time(typed))
		return m, tea.Batch(m.activeView().Update(msg), tickCmd(m.tickInterval()))
	case noticeMsg:
		m.notices = append(m.notices, notice{level: typed.level, text: typed.text, at: time.Now()})
		if typed.level == noticeError {
			log := logging.Component("tui")
			log.Warn().Str("notice", typed.text).Msg("operation failed")
		}
		return m, nil
	case tea.KeyMsg:
		if cmd, handled := m.handleGlobalKey(typed); handled {
			return m, cmd
		}
	}

	return m, m.activeView().Update(msg)
}

func (m *Model) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	key := msg.String()
	if key == "ctrl+c" {
		return tea.Quit, true
	}

	if m.activeView().HasModal() {
		return nil, false
	}
	if m.showHelp {
		if key == "?" || key == "esc" || key == "q" {
			m.showHelp = false
			return nil, true
		}
		return nil, true
	}

	switch key {
	case "q":
		return tea.Quit, true
	case "?":
		m.showHelp = true
		return nil, true
	case "T":
		m.cycleTheme()
		return nil, true
	case "B":
		if m.deps.Demo && !m.deps.State.State().DemoBannerDismissed {
			if err := m.deps.State.DismissDemoBanner(); err != nil {
				return noticeCmd(noticeError, "could not persist state: "+err.Error()), true
			}
		}
		return nil, true
	case "tab":
		return m.switchView(m.nextView(1)), true
	case "shift+tab":
		return m.switchView(m.nextView(-1)), true
	}

	if next, ok := viewSwitchKeys[key]; ok {
		return m.switchView(next), true
	}
	return nil, false
}

func (m *Model) cycleTheme() {
	m.theme = styles.Next(m.theme)
	m.st = styles.New(styles.Get(m.theme))
	// Persistence failure is non-fatal; the session keeps the new theme.
	_ = m.deps.State.SetTheme(m.theme)
}

func (m *Model) nextView(step int) ViewID {
	idx := 0
	for i, id := range viewOrder {
		if id == m.active {
			idx = i
			break
		}
	}
	idx = (idx + step + len(viewOrder)) % len(viewOrder)
	return viewOrder[idx]
}

func (m *Model) switchView(id ViewID) tea.Cmd {
	if _, ok := m.views[id]; !ok || id == m.active {
		return nil
	}
	m.active = id
	_ = m.deps.State.SetLastView(string(id))
	return m.activeView().Init()
}

func (m *Model) activeView() viewModel {
	return m.views[m.active]
}

func (m *Model) expireNotices(now time.Time) {
	kept := m.notices[:0]
	for _, n := range m.notices {
		if now.Sub(n.at) < noticeLifetime {
			kept = append(kept, n)
		}
	}
	m.notices = kept
}

func (m *Model) View() string {
	header := m.renderHeader()
	banner := m.renderBanner()
	footer := m.renderFooter()

	contentHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if banner != "" {
		contentHeight -= lipgloss.Height(banner)
	}
	if contentHeight < 0 {
		contentHeight = 0
	}

	body := m.activeView().View(m.st, m.width, contentHeight)
	if m.showHelp {
		body = m.renderHelpOverlay(m.width, contentHeight)
	}

	parts := []string{header}
	if banner != "" {
		parts = append(parts, banner)
	}
	parts = append(parts, body, footer)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) renderHeader() string {
	left := "feedadmin"
	tabs := make([]string, 0, len(viewOrder))
	for i, id := range viewOrder {
		label := fmt.Sprintf("%d:%s", i+1, id)
		if id == m.active {
			label = m.st.Accent.Render(label)
		}
		tabs = append(tabs, label)
	}
	right := m.deps.Cfg.API.BaseURL
	if m.deps.Demo {
		right = "demo"
	}
	return m.st.Header.Width(max(0, m.width)).Render(
		joinChrome(left, strings.Join(tabs, "  "), right, m.width-2))
}

func (m *Model) renderBanner() string {
	if !m.deps.Demo || m.deps.State.State().DemoBannerDismissed {
		return ""
	}
	text := "demo mode: data is local and resets on reseed  ·  B dismiss"
	return m.st.Banner.Width(max(0, m.width)).Render(truncate(text, max(0, m.width-2)))
}

func (m *Model) renderFooter() string {
	hints := m.activeView().Hints()
	base := hints + "  ·  tab switch · T theme · ? help · q quit"
	if n := m.latestNotice(); n != nil {
		style := m.st.Success
		if n.level == noticeError {
			style = m.st.Error
		}
		base = style.Render(n.text) + "  " + m.st.Muted.Render(base)
	}
	return m.st.Footer.Width(max(0, m.width)).Render(truncate(base, max(0, m.width-2)))
}

func (m *Model) latestNotice() *notice {
	if len(m.notices) == 0 {
		return nil
	}
	return &m.notices[len(m.notices)-1]
}

func joinChrome(left, center, right string, width int) string {
	if width <= 0 {
		return left
	}
	space := width - lipgloss.Width(left) - lipgloss.Width(center) - lipgloss.Width(right)
	if space < 2 {
		return truncate(left+"  "+right, width)
	}
	leftGap := space / 2
	rightGap := space - leftGap
	return left + strings.Repeat(" ", leftGap) + center + strings.Repeat(" ", rightGap) + right
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}
