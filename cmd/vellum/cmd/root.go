// Package cmd holds the cobra command tree for the vellum CLI.
package cmd

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the root command: connecting and running the client
// is the root's own job (no separate "run" subcommand), with "palette"
// as the one auxiliary subcommand for one-shot color inspection.
func NewRootCmd() *cobra.Command {
	root := newRunCmd()
	root.Use = "vellum [character]"
	root.AddCommand(newPaletteCmd())
	return root
}
