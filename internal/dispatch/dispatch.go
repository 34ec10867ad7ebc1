// Package dispatch routes a command invocation to local or remote execution
// and returns a structured result. Non-zero exits are data, never errors:
// callers inspect ExitCode.
package dispatch

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/joss/cockpit/internal/exec"
	"github.com/joss/cockpit/internal/logging"
	"github.com/joss/cockpit/internal/session"
)

// Result holds the captured output of one execution.
type Result struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exitCode"`
}

// Ok reports whether the command exited zero.
func (r Result) Ok() bool {
	return r.ExitCode == 0
}

// Dispatcher executes commands locally or over ssh depending on the target.
type Dispatcher struct {
	runner exec.Runner
	log    *logging.Logger
}

// New creates a dispatcher backed by the given runner.
func New(runner exec.Runner) *Dispatcher {
	return &Dispatcher{
		runner: runner,
		log:    logging.New("dispatch"),
	}
}

// Execute runs args in localDir, or on remote when a target is present.
// remoteDirOverride takes precedence over the target's configured working
// directory. The call never fails: spawn errors report ExitCode -1 with the
// error message in Stderr.
func (d *Dispatcher) Execute(ctx context.Context, args []string, localDir string, remote *session.RemoteTarget, remoteDirOverride string) Result {
	if len(args) == 0 {
		return Result{Stderr: "dispatch: empty command", ExitCode: -1}
	}

	spec := exec.Spec{Name: args[0], Args: args[1:], Dir: localDir}
	if remote != nil {
		dir := remoteDirOverride
		if dir == "" {
			dir = remote.WorkingDir
		}
		if dir == "" {
			// Runs in the remote shell's default directory; not fatal.
			d.log.Warn("remote_dir_missing", map[string]any{"host": remote.Host}, nil)
		}
		name, sshArgs := BuildRemoteCommand(remote, args, dir)
		spec = exec.Spec{Name: name, Args: sshArgs}
	}

	stdout, stderr, err := d.runner.Capture(ctx, spec)
	result := Result{
		Stdout:   string(stdout),
		Stderr:   string(stderr),
		ExitCode: exec.ExitCode(err),
	}
	if err != nil && result.ExitCode == -1 && result.Stderr == "" {
		result.Stderr = err.Error()
	}
	return result
}

// BuildRemoteCommand builds the ssh invocation for running args on the
// target: env exports and a cd into dir are embedded in a single remote
// shell command. dir may be empty.
func BuildRemoteCommand(remote *session.RemoteTarget, args []string, dir string) (string, []string) {
	sshArgs := []string{"-o", "BatchMode=yes"}
	if remote.Port != 0 {
		sshArgs = append(sshArgs, "-p", strconv.Itoa(remote.Port))
	}
	sshArgs = append(sshArgs, remote.Addr())

	var parts []string
	if dir != "" {
		parts = append(parts, "cd "+shellQuote(dir))
	}

	var cmd []string
	// Sorted for a stable invocation; env iteration order is random.
	keys := make([]string, 0, len(remote.Env))
	for k := range remote.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		cmd = append(cmd, k+"="+shellQuote(remote.Env[k]))
	}
	for _, a := range args {
		cmd = append(cmd, shellQuote(a))
	}
	parts = append(parts, strings.Join(cmd, " "))

	sshArgs = append(sshArgs, strings.Join(parts, " && "))
	return "ssh", sshArgs
}

// shellQuote single-quotes s for the remote shell. Bare words pass through.
func shellQuote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\n'\"\\$`&|;<>(){}[]*?~#") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
