package main

import (
	"encoding/json"
	"fmt"

	"budget/internal/cli"

	"github.com/spf13/cobra"
)

var flagCategoriesJSON bool

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the expense categories",
	RunE:  runCategories,
}

func init() {
	categoriesCmd.Flags().BoolVar(&flagCategoriesJSON, "json", false, "Print as JSON")
	rootCmd.AddCommand(categoriesCmd)
}

func runCategories(cmd *cobra.Command, _ []string) error {
	cats, err := cli.LoadCategories(cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if flagCategoriesJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(cats)
	}

	for _, c := range cats {
		fmt.Fprintf(out, "  %-4s %-16s %s\n", c.ID, c.Name, c.Icon)
	}
	return nil
}
