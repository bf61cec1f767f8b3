package main

import (
	"fmt"

	"trading-journal/internal/config"
	"trading-journal/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type rootOptions struct {
	configDir string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Trading journal dashboard",
		Long: `Journal records trades against prop-firm style accounts and serves a
dashboard of win rate, profit factor, equity curve and breakdowns by setup,
session, weekday and discipline.

Configuration is read from config.yml in the config directory, a .env file
next to it, and environment variables such as DATABASE_DSN or SERVER_PORT.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configDir, "config", "c", "./configs", "directory holding config.yml and .env")

	cmd.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newConfigCmd(opts),
		newHashPasswordCmd(),
		newVersionCmd(),
	)
	return cmd
}

// bootstrap loads configuration and builds the logger shared by every command.
func (o *rootOptions) bootstrap() (config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(o.configDir)
	if err != nil {
		return cfg, nil, fmt.Errorf("could not load config: %w", err)
	}
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		return cfg, nil, fmt.Errorf("could not initialize logger: %w", err)
	}
	return cfg, log, nil
}
