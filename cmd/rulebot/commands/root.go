// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/kavirubc
// Created: 2026-10-16
// Last Modified: 2026-10-16

// Package commands implements the rulebot command-line interface.
package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/similigh/rulebot/internal/core/config"
	"github.com/similigh/rulebot/internal/logging"
)

var (
	cfgFile  string
	verbose  bool
	logLevel string
	noColor  bool
	dryRun   bool

	// Set by the root PersistentPreRunE.
	env    *config.Env
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "rulebot",
	Short: "Rule-driven triage and editorial checks for GitHub issues and pull requests",
	Long: `rulebot evaluates configured triage rules and editorial rules against GitHub
issues and pull requests, then labels, comments and fixes titles accordingly.

Run it once per event from a GitHub Actions workflow (process), as a long-lived
webhook receiver (serve), or offline against a file of items (batch).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error
		env, err = config.LoadEnv(".env")
		if err != nil {
			return err
		}

		level := env.LogLevel
		if cmd.Flags().Changed("log-level") {
			level = logLevel
		}
		if verbose {
			level = "debug"
		}
		logger = logging.NewLogger(os.Stderr, logging.ParseLevel(level), noColor || isCI())
		slog.SetDefault(logger)
		logger.Debug("logger initialized", "level", level)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Path to the rulebot config file (default: .github/rulebot.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable coloured log output")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Log planned actions instead of performing them")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func isCI() bool {
	return os.Getenv("CI") == "true" || os.Getenv("GITHUB_ACTIONS") == "true"
}
