package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/joss/cockpit/internal/config"
	"github.com/joss/cockpit/internal/dispatch"
	"github.com/joss/cockpit/internal/exec"
	"github.com/joss/cockpit/internal/render"
	"github.com/joss/cockpit/internal/session"
)

func runCmd() *cobra.Command {
	var dir string
	var remoteHost string
	var remoteUser string
	var remotePort int
	var remoteDir string

	cmd := &cobra.Command{
		Use:   "run -- <command> [args...]",
		Short: "Run a command locally or on a remote host",
		Long: `Run a command through the dispatcher. Without --remote the command
executes locally in --dir. With --remote it is wrapped in an ssh
invocation; --remote-dir overrides the target's working directory.
The exit code of the command becomes the exit code of cockpit.`,
		Args: cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			env := config.Env()
			if remoteHost == "" {
				remoteHost = env.RemoteHost
			}

			var remote *session.RemoteTarget
			if remoteHost != "" {
				user := remoteUser
				if user == "" {
					user = env.RemoteUser
				}
				remote = &session.RemoteTarget{
					Host: remoteHost,
					User: user,
					Port: remotePort,
				}
			}

			d := dispatch.New(exec.NewOSRunner())
			result := d.Execute(context.Background(), args, dir, remote, remoteDir)
			render.Stdout().ExecResult(result)

			code := result.ExitCode
			if code < 0 {
				code = 1
			}
			os.Exit(code)
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Local working directory")
	cmd.Flags().StringVar(&remoteHost, "remote", "", "Remote host (COCKPIT_REMOTE_HOST)")
	cmd.Flags().StringVar(&remoteUser, "remote-user", "", "Remote user (COCKPIT_REMOTE_USER)")
	cmd.Flags().IntVar(&remotePort, "remote-port", 0, "Remote ssh port")
	cmd.Flags().StringVar(&remoteDir, "remote-dir", "", "Remote working directory override")

	return cmd
}
