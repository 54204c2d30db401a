package ui

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/feedmill/feedadmin/internal/api"
	"github.com/feedmill/feedadmin/internal/config"
	"github.com/feedmill/feedadmin/internal/demo"
	"github.com/feedmill/feedadmin/internal/query"
	"github.com/feedmill/feedadmin/internal/runs"
	"github.com/feedmill/feedadmin/internal/tuistate"
)

// newTestDeps wires the screens against an in-memory demo service.
func newTestDeps(t *testing.T) *Deps {
	t.Helper()

	store, err := demo.OpenStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	srv, err := demo.NewServer(store, demo.Options{Seed: true, RunDuration: 50 * time.Millisecond})
	require.NoError(t, err)
	t.Cleanup(srv.Close)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	client, err := api.NewClient(api.Options{BaseURL: ts.URL, Timeout: 5 * time.Second})
	require.NoError(t, err)

	state, err := tuistate.Load(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)

	tracker := runs.NewTracker(client, runs.Options{
		Interval: 20 * time.Millisecond,
		MaxWait:  time.Second,
	})
	t.Cleanup(tracker.Stop)

	return &Deps{
		Ctx:     context.Background(),
		Cfg:     config.DefaultConfig(),
		Client:  client,
		Cache:   query.NewCache(),
		Tracker: tracker,
		State:   state,
		Log:     zerolog.Nop(),
	}
}

func TestErrorNoticeRendersAndExpires(t *testing.T) {
	m := NewModel(newTestDeps(t))
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	m.Update(noticeMsg{level: noticeError, text: "could not delete feed"})
	require.Contains(t, m.View(), "could not delete feed")

	// A tick past the notice lifetime drops it from the footer.
	m.Update(tickMsg(time.Now().Add(noticeLifetime + time.Second)))
	require.NotContains(t, m.View(), "could not delete feed")
}

func TestSuccessNoticeRenders(t *testing.T) {
	m := NewModel(newTestDeps(t))
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	m.Update(noticeMsg{level: noticeSuccess, text: "feed \"HN\" created"})
	require.Contains(t, m.View(), "feed \"HN\" created")
}

func TestViewSwitchPersistsLastView(t *testing.T) {
	deps := newTestDeps(t)
	m := NewModel(deps)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'3'}})
	require.Equal(t, ViewTags, m.active)
	require.Equal(t, string(ViewTags), deps.State.State().LastView)
}
