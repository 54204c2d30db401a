// Package cli wires the feedadmin commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/feedmill/feedadmin/internal/api"
	"github.com/feedmill/feedadmin/internal/config"
	"github.com/feedmill/feedadmin/internal/demo"
	"github.com/feedmill/feedadmin/internal/logging"
	"github.com/feedmill/feedadmin/internal/models"
	"github.com/feedmill/feedadmin/internal/query"
	"github.com/feedmill/feedadmin/internal/runs"
	"github.com/feedmill/feedadmin/internal/tuistate"
	"github.com/feedmill/feedadmin/internal/ui"
)

var (
	cfgFile    string
	cfgProfile string
	logLevel   string
	demoMode   bool
)

var rootCmd = &cobra.Command{
	Use:   "feedadmin",
	Short: "Terminal admin console for the feed service",
	Long: `feedadmin is a terminal console for managing feeds, sources, tags,
connections and exporters on a feed service.

Run without arguments to open the console against the configured
service. Pass --demo to run against a self-contained local service
with sample data.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConsole(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&cfgProfile, "profile", "", "named API profile to use")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.Flags().BoolVar(&demoMode, "demo", false, "run against an embedded demo service")
}

// Execute runs the CLI.
func Execute(version string) error {
	rootCmd.Version = version

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// loadConfig resolves configuration and applies command-line overrides. The
// second return is the config file that was read, empty when none existed.
func loadConfig() (*config.Config, string, error) {
	loader := config.NewLoader()
	if cfgFile != "" {
		loader.SetConfigFile(cfgFile)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, "", err
	}
	if cfgProfile != "" {
		cfg.Profile = cfgProfile
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, "", err
	}
	return cfg, loader.ConfigFileUsed(), nil
}

// initFileLogging sends logs to the log file. The terminal belongs to the
// TUI while the console runs.
func initFileLogging(cfg *config.Config) (*os.File, error) {
	f, err := os.OpenFile(cfg.LogFilePath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	logging.Init(logging.Config{
		Level:        cfg.Logging.Level,
		Format:       "json",
		Output:       f,
		EnableCaller: cfg.Logging.EnableCaller,
	})
	return f, nil
}

func runConsole(ctx context.Context) error {
	cfg, cfgPath, err := loadConfig()
	if err != nil {
		return err
	}
	logFile, err := initFileLogging(cfg)
	if err != nil {
		return err
	}
	defer logFile.Close()
	log := logging.Component("cli")
	if cfgPath != "" {
		log.Debug().Str("config_file", cfgPath).Msg("configuration loaded")
	}

	apiCfg := cfg.ActiveAPI()

	var demoSrv *demo.Server
	if demoMode {
		store, err := demo.OpenStore(cfg.DemoDatabasePath())
		if err != nil {
			return fmt.Errorf("open demo store: %w", err)
		}
		defer store.Close()

		demoSrv, err = demo.NewServer(store, demo.Options{
			RunDuration: cfg.Demo.RunDuration,
			Seed:        cfg.Demo.Seed,
		})
		if err != nil {
			return err
		}
		go func() {
			if err := demoSrv.ListenAndServe(ctx, cfg.Demo.Bind); err != nil {
				log.Error().Err(err).Msg("demo service stopped")
			}
		}()
		apiCfg.BaseURL = cfg.Demo.Bind
		apiCfg.Token = ""
	}

	client, err := api.NewClient(api.Options{
		BaseURL: apiCfg.BaseURL,
		Token:   apiCfg.Token,
		Timeout: apiCfg.Timeout,
	})
	if err != nil {
		return err
	}

	state, err := tuistate.Load(cfg.StatePath())
	if err != nil {
		return fmt.Errorf("load tui state: %w", err)
	}

	cache := query.NewCache()
	tracker := runs.NewTracker(client, runs.Options{
		Interval: cfg.TUI.RunPollInterval,
		MaxWait:  cfg.TUI.RunPollMaxWait,
		OnSettle: func(feedID int64, status models.RunStatus) {
			// The next tick refetches and picks up the final status.
			cache.Invalidate("feeds")
		},
	})

	log.Info().Str("base_url", apiCfg.BaseURL).Bool("demo", demoMode).Msg("starting console")
	return ui.Run(&ui.Deps{
		Ctx:     ctx,
		Cfg:     cfg,
		Client:  client,
		Cache:   cache,
		Tracker: tracker,
		State:   state,
		Demo:    demoMode,
		Log:     log,
	})
}
