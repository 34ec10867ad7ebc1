// Package exec provides a testable command execution abstraction so the
// dispatcher and summarize engine never call exec.Command directly.
package exec

import (
	"bytes"
	"context"
	"errors"
	osexec "os/exec"
	"strings"
)

// Spec describes one process invocation.
type Spec struct {
	// Name is the binary to run.
	Name string
	// Args are the arguments, excluding the binary name.
	Args []string
	// Dir is the working directory ("" = inherit).
	Dir string
	// Env overrides environment variables (nil = inherit from parent).
	Env []string
	// Stdin is optional input piped to the process.
	Stdin string
}

// Runner defines the interface for executing external commands.
// Inject this instead of calling exec.Command directly.
type Runner interface {
	// Run executes a command and returns combined stdout/stderr.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)

	// Capture executes a spec and returns stdout and stderr separately.
	// A non-zero exit surfaces as an *exec.ExitError; use ExitCode.
	Capture(ctx context.Context, spec Spec) (stdout, stderr []byte, err error)
}

// ExitCode extracts the process exit code from a Capture/Run error.
// nil means 0; a start failure (binary missing, bad dir) reports -1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exit *osexec.ExitError
	if errors.As(err, &exit) {
		return exit.ExitCode()
	}
	return -1
}

// OSRunner implements Runner using os/exec.
type OSRunner struct{}

// NewOSRunner creates a new OS-based command runner.
func NewOSRunner() *OSRunner {
	return &OSRunner{}
}

// Run executes a command and returns combined output.
func (r *OSRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := osexec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}

// Capture executes a spec and returns stdout and stderr separately.
func (r *OSRunner) Capture(ctx context.Context, spec Spec) ([]byte, []byte, error) {
	cmd := osexec.CommandContext(ctx, spec.Name, spec.Args...)
	cmd.Dir = spec.Dir
	if spec.Env != nil {
		cmd.Env = spec.Env
	}
	if spec.Stdin != "" {
		cmd.Stdin = strings.NewReader(spec.Stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// MockRunner implements Runner for testing.
type MockRunner struct {
	// Calls records all invocations in order.
	Calls []Spec

	// Responses maps binary name to response.
	Responses map[string]MockResponse
}

// MockResponse defines the response for a mocked command.
type MockResponse struct {
	Stdout []byte
	Stderr []byte
	Err    error
}

// NewMockRunner creates a new mock runner.
func NewMockRunner() *MockRunner {
	return &MockRunner{Responses: make(map[string]MockResponse)}
}

// AddResponse sets the response for a binary name.
func (m *MockRunner) AddResponse(name string, resp MockResponse) {
	m.Responses[name] = resp
}

func (m *MockRunner) respond(spec Spec) MockResponse {
	m.Calls = append(m.Calls, spec)
	return m.Responses[spec.Name]
}

func (m *MockRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	resp := m.respond(Spec{Name: name, Args: args})
	return append(resp.Stdout, resp.Stderr...), resp.Err
}

func (m *MockRunner) Capture(ctx context.Context, spec Spec) ([]byte, []byte, error) {
	resp := m.respond(spec)
	return resp.Stdout, resp.Stderr, resp.Err
}
