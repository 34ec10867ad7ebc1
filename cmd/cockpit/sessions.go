package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joss/cockpit/internal/config"
	"github.com/joss/cockpit/internal/discovery"
	"github.com/joss/cockpit/internal/exec"
	"github.com/joss/cockpit/internal/history"
	"github.com/joss/cockpit/internal/render"
	"github.com/joss/cockpit/internal/session"
	"github.com/joss/cockpit/internal/summarize"
)

func sessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect saved and discoverable sessions",
	}

	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List saved sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			sessions, err := store.ListSessions(context.Background(), limit)
			if err != nil {
				return err
			}
			render.Stdout().Sessions(sessions)
			return nil
		},
	}
	listCmd.Flags().IntVarP(&limit, "limit", "n", 50, "Max sessions to list")

	showCmd := &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show a saved session's tabs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			sess, err := store.GetSession(context.Background(), args[0])
			if err != nil {
				return err
			}

			w := render.Stdout()
			w.Println("%s (%s) %s", sess.Name, sess.AgentType, sess.ProjectRoot)
			for _, tab := range sess.Tabs {
				marker := " "
				if tab.ID == sess.ActiveTabID {
					marker = "*"
				}
				w.Item("%s %-26s %-30s %d logs", marker, tab.ID, tab.Name, len(tab.Logs))
			}
			return nil
		},
	}

	var agent string
	var root string
	discoverCmd := &cobra.Command{
		Use:   "discover",
		Short: "Scan agent session storage for resumable sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			scanner := discovery.NewScanner(root)
			if agent != "" {
				found, err := scanner.ScanAgent(session.AgentType(agent))
				if err != nil {
					return err
				}
				render.Stdout().Discovered(found)
				return nil
			}
			render.Stdout().Discovered(scanner.Scan())
			return nil
		},
	}
	discoverCmd.Flags().StringVarP(&agent, "agent", "a", "", "Scan a single agent's storage")
	discoverCmd.Flags().StringVar(&root, "root", "", "Scan root (default: home directory)")

	var tabID string
	compactCmd := &cobra.Command{
		Use:   "compact <session-id>",
		Short: "Summarize a tab into a new compacted tab",
		Long: `Summarize a tab's transcript with the session's agent and insert the
compacted result as a new tab directly after the source. The mutated
session is saved back to history.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := context.Background()
			sess, err := store.GetSession(ctx, args[0])
			if err != nil {
				return err
			}

			target := tabID
			if target == "" {
				target = sess.ActiveTabID
			}
			if target == "" && len(sess.Tabs) > 0 {
				target = sess.Tabs[0].ID
			}

			workflow := summarize.NewWorkflow(summarize.NewCLIEngine(exec.NewOSRunner()))
			workflow.SetSession(sess)

			updated, err := workflow.Start(ctx, target)
			if err != nil {
				return fmt.Errorf("compact: %w", err)
			}
			if updated == nil {
				return nil // cancelled
			}
			if err := store.SaveSession(ctx, updated); err != nil {
				return fmt.Errorf("save session: %w", err)
			}

			status := workflow.Status()
			if status.Result != nil {
				render.Stdout().Println("compacted %d → %d tokens (%d%% reduction), new tab %s",
					status.Result.OriginalTokens, status.Result.CompactedTokens,
					status.Result.ReductionPercent, status.Result.NewTabID)
			}
			return nil
		},
	}
	compactCmd.Flags().StringVarP(&tabID, "tab", "t", "", "Tab to compact (default: active tab)")

	deleteCmd := &cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete a saved session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory()
			if err != nil {
				return err
			}
			defer store.Close()
			return store.DeleteSession(context.Background(), args[0])
		},
	}

	cmd.AddCommand(listCmd, showCmd, discoverCmd, compactCmd, deleteCmd)
	return cmd
}

func openHistory() (*history.Store, error) {
	return history.Open(config.GetPaths().Data)
}
