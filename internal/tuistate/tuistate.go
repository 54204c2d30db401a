// Package tuistate persists UI preferences across sessions: theme, the
// demo-banner dismissed flag, and the last active view.
package tuistate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

const CurrentVersion = 1

// DefaultTheme applies when no state file exists.
const DefaultTheme = "dark"

// State is the persisted document. Absence of the file means defaults:
// dark theme, banner shown.
type State struct {
	Version             int    `json:"version"`
	Theme               string `json:"theme,omitempty"`
	DemoBannerDismissed bool   `json:"demo_banner_dismissed,omitempty"`
	LastView            string `json:"last_view,omitempty"`
}

func defaultState() State {
	return State{Version: CurrentVersion, Theme: DefaultTheme}
}

// Manager loads and write-through-saves the state file.
type Manager struct {
	path string

	mu    sync.Mutex
	state State
}

// Load reads the state file at path. A missing file yields defaults; a
// corrupt file is treated the same way rather than blocking startup.
func Load(path string) (*Manager, error) {
	m := &Manager{path: path, state: defaultState()}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return m, nil
		}
		return nil, fmt.Errorf("read tui state: %w", err)
	}

	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		return m, nil
	}
	if state.Theme == "" {
		state.Theme = DefaultTheme
	}
	state.Version = CurrentVersion
	m.state = state
	return m, nil
}

// State returns a copy of the current state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// SetTheme records the theme and saves.
func (m *Manager) SetTheme(theme string) error {
	return m.update(func(s *State) { s.Theme = theme })
}

// DismissDemoBanner records the dismissal and saves.
func (m *Manager) DismissDemoBanner() error {
	return m.update(func(s *State) { s.DemoBannerDismissed = true })
}

// SetLastView records the active view for session restore and saves.
func (m *Manager) SetLastView(view string) error {
	return m.update(func(s *State) { s.LastView = view })
}

func (m *Manager) update(fn func(*State)) error {
	m.mu.Lock()
	fn(&m.state)
	state := m.state
	m.mu.Unlock()
	return save(m.path, state)
}

// save writes atomically via a temp file rename so a crash mid-write never
// corrupts the state.
func save(path string, state State) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode tui state: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write tui state: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace tui state: %w", err)
	}
	return nil
}
