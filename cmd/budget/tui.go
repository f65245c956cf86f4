package main

import (
	"budget/internal/cli"
	"budget/internal/log"
	"budget/internal/tui"

	"github.com/spf13/cobra"
)

var flagAccessible bool

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Plan a budget in the terminal",
	RunE:  runTUI,
}

func init() {
	tuiCmd.Flags().BoolVar(&flagAccessible, "accessible", false, "Use plain prompts suitable for screen readers")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	ctx, cancel := cli.SignalContext(cmd.Context(), log.Discard())
	defer cancel()

	store, err := cli.NewStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	cats, err := cli.LoadCategories(cfg)
	if err != nil {
		return err
	}

	app := tui.New(store, cats,
		tui.WithPrompter(tui.NewPrompter(cats, flagAccessible)),
		tui.WithOutput(cmd.OutOrStdout()))
	return app.Run(ctx)
}
