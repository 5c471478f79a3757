// Command migrate batch-converts a directory of legacy VellumFE layout
// files into the current schema, grounded on original_source/src/migrate.rs's
// run_migration (source dir -> output dir, skip-if-current, dry-run/verbose).
//
// The per-window field canonicalization itself lives in layout.Migrate and
// already runs transparently on every Store.Load of a pre-CurrentSchema
// file; this binary exists for the batch/offline case -- porting a whole
// directory of exported layouts at once, without starting the client.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/drake/vellum/layout"
)

func main() {
	if err := newMigrateCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}

func newMigrateCmd() *cobra.Command {
	var (
		src     string
		out     string
		dryRun  bool
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Convert legacy layout files to the current schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := layout.MigrateDir(src, out, dryRun)
			if err != nil {
				return err
			}
			if verbose {
				for _, f := range result.Converted {
					fmt.Printf("  converted %s (%d windows)\n", f, len(result.WindowsByFile[f]))
				}
				for name, reason := range result.Errors {
					fmt.Fprintf(os.Stderr, "  warning: %s: %v\n", name, reason)
				}
			}
			fmt.Printf("%d converted, %d skipped (already current), %d failed\n",
				len(result.Converted), result.Skipped, len(result.Errors))
			return nil
		},
	}

	cmd.Flags().StringVar(&src, "src", "", "Source directory of legacy layout files")
	cmd.Flags().StringVar(&out, "out", "", "Output directory for converted layouts")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would be converted without writing anything")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Print a line per converted and per failed file")
	cmd.MarkFlagRequired("src")
	cmd.MarkFlagRequired("out")

	return cmd
}
