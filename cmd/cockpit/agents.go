package main

import (
	"github.com/spf13/cobra"

	"github.com/joss/cockpit/internal/render"
	"github.com/joss/cockpit/internal/session"
)

func agentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agents",
		Short: "List known agents and their capabilities",
		Run: func(cmd *cobra.Command, args []string) {
			render.Stdout().Agents()
		},
	}

	capsCmd := &cobra.Command{
		Use:   "caps <agent>",
		Short: "Show the full capability profile for an agent",
		Long:  "Show the full capability profile for an agent. Unknown agents resolve to the all-false profile.",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			render.Stdout().Capabilities(session.AgentType(args[0]))
		},
	}
	cmd.AddCommand(capsCmd)

	return cmd
}
