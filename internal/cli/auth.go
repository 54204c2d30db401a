package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authSetTokenCmd)
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage API credentials",
}

var authSetTokenCmd = &cobra.Command{
	Use:   "set-token",
	Short: "Store the API bearer token in the config file",
	Long: `Prompt for a bearer token and write it to the config file. With
--profile the token is stored under that profile instead of the
default API section.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		token, err := promptToken()
		if err != nil {
			return err
		}
		if token == "" {
			return fmt.Errorf("token must not be empty")
		}

		path := cfgFile
		if path == "" {
			path = filepath.Join(cfg.Global.ConfigDir, "config.yaml")
		}

		v := viper.New()
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("read config: %w", err)
		}

		key := "api.token"
		if cfgProfile != "" {
			key = "profiles." + cfgProfile + ".token"
		}
		v.Set(key, token)
		if err := v.WriteConfigAs(path); err != nil {
			return fmt.Errorf("write config: %w", err)
		}

		fmt.Fprintf(os.Stderr, "token stored in %s\n", path)
		return nil
	},
}

// promptToken reads the token without echoing when stdin is a terminal.
func promptToken() (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, "API token: ")
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("read token: %w", err)
		}
		return strings.TrimSpace(string(raw)), nil
	}

	// Piped input, e.g. "echo $TOKEN | feedadmin auth set-token".
	var token string
	if _, err := fmt.Fscanln(os.Stdin, &token); err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return strings.TrimSpace(token), nil
}
