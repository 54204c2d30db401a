package tuistate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tui-state.json")
	m, err := Load(path)
	require.NoError(t, err)

	state := m.State()
	require.Equal(t, DefaultTheme, state.Theme)
	require.False(t, state.DemoBannerDismissed)
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tui-state.json")
	m, err := Load(path)
	require.NoError(t, err)

	require.NoError(t, m.SetTheme("light"))
	require.NoError(t, m.DismissDemoBanner())
	require.NoError(t, m.SetLastView("sources"))

	reloaded, err := Load(path)
	require.NoError(t, err)
	state := reloaded.State()
	require.Equal(t, "light", state.Theme)
	require.True(t, state.DemoBannerDismissed)
	require.Equal(t, "sources", state.LastView)
	require.Equal(t, CurrentVersion, state.Version)
}

func TestCorruptFileFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tui-state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	m, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, DefaultTheme, m.State().Theme)
}
