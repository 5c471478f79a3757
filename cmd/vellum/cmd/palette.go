package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/drake/vellum/palette"
	"github.com/drake/vellum/vconfig"
)

// newPaletteCmd prints the merged color settings resolved against the
// terminal's 256-color palette, so a user can sanity-check a theme before
// launching into the full UI.
func newPaletteCmd() *cobra.Command {
	var character string

	cmd := &cobra.Command{
		Use:   "palette",
		Short: "Print the merged color settings and their nearest 256-color match",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				fmt.Println("stdout is not a terminal; color swatches will print as plain codes")
			}

			settings, err := vconfig.Load(character)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if len(settings.Colors) == 0 {
				fmt.Println("no colors configured")
				return nil
			}
			for name, scoped := range settings.Colors {
				c, err := palette.Hex(string(scoped.Value))
				if err != nil {
					fmt.Printf("%-20s %-10s invalid: %v\n", name, scoped.Value, err)
					continue
				}
				fmt.Printf("%-20s %-10s scope=%-9s 256=%d\n", name, c, scoped.Scope, c.Nearest256())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&character, "character", "", "Character overlay to merge in")
	return cmd
}
