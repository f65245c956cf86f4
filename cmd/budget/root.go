package main

import (
	"fmt"
	"os"

	"budget/internal/cli"
	"budget/internal/config"
	"budget/internal/log"

	"github.com/spf13/cobra"
)

var (
	cfg    *config.Config
	logger *log.Logger
)

var rootCmd = &cobra.Command{
	Use:           "budget",
	Short:         "Budget planner",
	Long:          "Define a budget, record expenses against it and keep track of what is left.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		cli.LoadEnvFile()

		var err error
		if cfg, err = cli.LoadAndValidateConfig(); err != nil {
			return err
		}
		if logger, err = cli.SetupLogger(cfg.LogLevel); err != nil {
			return err
		}
		return nil
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
