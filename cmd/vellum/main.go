// Command vellum is the client's executable: a cobra CLI wrapping the two
// frontends (terminal and desktop GUI) around a single session.Session.
//
// Grounded on ekain-fr-h2's internal/cmd NewRootCmd/newRunCmd split (a
// thin root command delegating to one flag-bearing subcommand per mode).
package main

import (
	"fmt"
	"os"

	"github.com/drake/vellum/cmd/vellum/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "vellum:", err)
		os.Exit(1)
	}
}
