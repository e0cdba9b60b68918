// Package main provides the entry point for the metaset CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/reoring/metaset/cmd/metaset/commands"
)

var verbose bool

func main() {
	rootCmd := &cobra.Command{
		Use:   "metaset",
		Short: "Metaset record tooling - validate, scaffold and rewrite JSON record files",
		Long: `Metaset works with JSON record files described by a "__meta__" model block.

Commands:
  validate  Validate a data file against a model
  new       Print a zero-valued entry built from a model
  export    Export a model as JSON Schema
  rewrite   Rewrite a data file atomically with a backup`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewEntryCommand())
	rootCmd.AddCommand(commands.NewExportCommand())
	rootCmd.AddCommand(commands.NewRewriteCommand())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
