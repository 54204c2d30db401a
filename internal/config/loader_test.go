package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfigFile(t, "{}\n"))
	require.NoError(t, err)

	require.Equal(t, "http://127.0.0.1:8642", cfg.API.BaseURL)
	require.Equal(t, "dark", cfg.TUI.Theme)
	require.Equal(t, 30*time.Second, cfg.TUI.StaleAfter)
	require.Equal(t, 2*time.Second, cfg.TUI.RunPollInterval)
	require.True(t, cfg.Demo.Seed)
}

func TestConfigFileUsedReportsLoadedPath(t *testing.T) {
	path := writeConfigFile(t, "api:\n  base_url: http://feeds.internal\n")

	loader := NewLoader()
	loader.SetConfigFile(path)
	_, err := loader.Load()
	require.NoError(t, err)
	require.Equal(t, path, loader.ConfigFileUsed())
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
api:
  base_url: https://feeds.internal.example.com
  timeout: 30s
tui:
  theme: light
  stale_after: 2m
`)
	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	require.Equal(t, "https://feeds.internal.example.com", cfg.API.BaseURL)
	require.Equal(t, 30*time.Second, cfg.API.Timeout)
	require.Equal(t, "light", cfg.TUI.Theme)
	require.Equal(t, 2*time.Minute, cfg.TUI.StaleAfter)
	// Untouched keys keep defaults.
	require.Equal(t, 12, cfg.TUI.PageSize)
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("FEEDADMIN_API_BASE_URL", "https://env.example.com")
	t.Setenv("FEEDADMIN_TUI_THEME", "high-contrast")

	path := writeConfigFile(t, `
api:
  base_url: https://file.example.com
`)
	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	require.Equal(t, "https://env.example.com", cfg.API.BaseURL)
	require.Equal(t, "high-contrast", cfg.TUI.Theme)
}

func TestLoadRejectsInvalidTheme(t *testing.T) {
	_, err := LoadFromFile(writeConfigFile(t, "tui:\n  theme: solarized\n"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "tui.theme")
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestProfileResolution(t *testing.T) {
	path := writeConfigFile(t, `
api:
  base_url: https://default.example.com
  token: default-token
profile: staging
profiles:
  staging:
    base_url: https://staging.example.com
    token: staging-token
  prod:
    base_url: https://prod.example.com
`)
	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	active := cfg.ActiveAPI()
	require.Equal(t, "https://staging.example.com", active.BaseURL)
	require.Equal(t, "staging-token", active.Token)

	// A profile without a token falls back to the default token.
	cfg.Profile = "prod"
	active = cfg.ActiveAPI()
	require.Equal(t, "https://prod.example.com", active.BaseURL)
	require.Equal(t, "default-token", active.Token)
}

func TestUnknownProfileRejected(t *testing.T) {
	path := writeConfigFile(t, "profile: nope\n")
	_, err := LoadFromFile(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "profile")
}

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	require.Equal(t, filepath.Join(home, "logs"), expandTilde("~/logs"))
	require.Equal(t, home, expandTilde("~"))
	require.Equal(t, "/abs/path", expandTilde("/abs/path"))
	require.Equal(t, "", expandTilde(""))
}
