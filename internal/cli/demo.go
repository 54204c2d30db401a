package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/feedmill/feedadmin/internal/demo"
	"github.com/feedmill/feedadmin/internal/logging"
)

var (
	demoBind  string
	demoReset bool
)

func init() {
	rootCmd.AddCommand(demoCmd)

	demoCmd.Flags().StringVar(&demoBind, "bind", "", "listen address (default from config)")
	demoCmd.Flags().BoolVar(&demoReset, "reset", false, "delete the demo database before starting")
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the embedded demo feed service in the foreground",
	Long: `Run the demo feed service without the console, so other clients
(or a second feedadmin instance) can talk to it. Data persists in a
local SQLite file between restarts; --reset starts from seed data
again.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		logging.Init(logging.Config{
			Level:        cfg.Logging.Level,
			Format:       cfg.Logging.Format,
			Output:       os.Stderr,
			EnableCaller: cfg.Logging.EnableCaller,
		})

		dbPath := cfg.DemoDatabasePath()
		if demoReset {
			if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("reset demo database: %w", err)
			}
		}

		store, err := demo.OpenStore(dbPath)
		if err != nil {
			return fmt.Errorf("open demo store: %w", err)
		}
		defer store.Close()

		srv, err := demo.NewServer(store, demo.Options{
			RunDuration: cfg.Demo.RunDuration,
			Seed:        cfg.Demo.Seed,
		})
		if err != nil {
			return err
		}

		bind := cfg.Demo.Bind
		if demoBind != "" {
			bind = demoBind
		}
		fmt.Fprintf(os.Stderr, "demo feed service on http://%s (db: %s)\n", bind, dbPath)
		return srv.ListenAndServe(cmd.Context(), bind)
	},
}
