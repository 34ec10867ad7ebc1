package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joss/cockpit/internal/agentout"
	"github.com/joss/cockpit/internal/session"
)

func extractCmd() *cobra.Command {
	var agent string

	cmd := &cobra.Command{
		Use:   "extract [file]",
		Short: "Resolve display text from captured agent output",
		Long: `Resolve the display text from captured agent output. Reads the file
argument, or stdin when no file is given. With --agent, the agent's
registered parser is used; otherwise the generic JSONL heuristic applies.
Plain text (first non-blank line not starting with '{') passes through
unchanged.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw []byte
			var err error
			if len(args) == 1 {
				raw, err = os.ReadFile(args[0])
			} else {
				raw, err = io.ReadAll(os.Stdin)
			}
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			var text string
			if agent != "" {
				text = agentout.ExtractForAgent(string(raw), session.AgentType(agent))
			} else {
				text = agentout.Extract(string(raw))
			}
			fmt.Println(text)
			return nil
		},
	}
	cmd.Flags().StringVarP(&agent, "agent", "a", "", "Agent whose parser interprets the output")

	return cmd
}
