// Package main provides the cockpit CLI entrypoint.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/joss/cockpit/internal/config"
)

var version = "0.1.0"

func main() {
	var noColor bool

	rootCmd := &cobra.Command{
		Use:   "cockpit",
		Short: "Unified coordinator for CLI coding agents and shell sessions",
		Long: `cockpit coordinates interactive sessions with external AI coding
agents and plain shell processes: it interprets their streamed output,
queues input issued while a session is busy, dispatches commands locally
or to a remote host, and compacts long conversation tabs.`,
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor || config.Env().NoColor || !term.IsTerminal(int(os.Stdout.Fd())) {
				color.NoColor = true
			}
		},
	}
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(agentsCmd())
	rootCmd.AddCommand(extractCmd())
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(sessionsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
