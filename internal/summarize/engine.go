package summarize

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/joss/cockpit/internal/agentout"
	"github.com/joss/cockpit/internal/capability"
	"github.com/joss/cockpit/internal/exec"
	"github.com/joss/cockpit/internal/logging"
	"github.com/joss/cockpit/internal/session"
	"github.com/joss/cockpit/internal/tokens"
)

const compactPrompt = `You are a conversation summarizer. Summarize the following conversation between a user and an AI assistant.

Focus on:
- Key decisions made
- Important code changes or files modified
- Problems solved and solutions used
- Current state of the task

Keep the summary concise but complete enough to continue the conversation.
Do NOT include pleasantries or meta-commentary about the conversation.
Output ONLY the summary, nothing else.

Conversation to summarize:
%s`

// DefaultMinLogs is the transcript length below which compaction is refused.
const DefaultMinLogs = 5

// CLIEngine summarizes by invoking the session's agent binary in batch mode
// and extracting the reply from its structured output.
type CLIEngine struct {
	runner  exec.Runner
	log     *logging.Logger
	minLogs int

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewCLIEngine creates an engine backed by the given runner.
func NewCLIEngine(runner exec.Runner) *CLIEngine {
	return &CLIEngine{
		runner:  runner,
		log:     logging.New("summarize.engine"),
		minLogs: DefaultMinLogs,
	}
}

// MinLogs is the minimum transcript length required.
func (e *CLIEngine) MinLogs() int {
	return e.minLogs
}

// CanSummarize reports whether the tab holds enough content.
func (e *CLIEngine) CanSummarize(tab *session.Tab) bool {
	return tab != nil && len(tab.Logs) >= e.minLogs
}

// CompactedTabName derives the compacted tab's name from the source name.
func (e *CLIEngine) CompactedTabName(name string) string {
	return fmt.Sprintf("%s Compacted %s", name, time.Now().Format("2006-01-02"))
}

// Cancel aborts an in-flight Summarize call.
func (e *CLIEngine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
	}
}

// Summarize builds the compaction prompt from the transcript, runs the agent
// binary non-interactively, and returns the compacted transcript with token
// counts.
func (e *CLIEngine) Summarize(ctx context.Context, req Request, logs []session.Log, onProgress func(Progress)) (*Summary, error) {
	ctx, cancel := context.WithCancel(ctx)
	e.mu.Lock()
	e.cancel = cancel
	e.mu.Unlock()
	defer cancel()

	report := func(stage string, percent int, msg string) {
		if onProgress != nil {
			onProgress(Progress{Stage: stage, Percent: percent, Message: msg})
		}
	}

	report("collect", 10, "collecting transcript")
	originalTokens := tokens.CountLogs(logs)
	transcript := buildTranscript(logs)

	spec, err := batchSpec(req.Agent, fmt.Sprintf(compactPrompt, transcript), req.ProjectRoot)
	if err != nil {
		return nil, err
	}

	report("summarize", 50, fmt.Sprintf("summarizing %d tokens with %s", originalTokens, req.Agent))
	start := time.Now()
	stdout, stderr, runErr := e.runner.Capture(ctx, spec)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if runErr != nil {
		return nil, fmt.Errorf("%s exited %d: %s", req.Agent, exec.ExitCode(runErr), strings.TrimSpace(string(stderr)))
	}

	text := agentout.ExtractForAgent(string(stdout), req.Agent)
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%s produced no summary text", req.Agent)
	}

	report("finalize", 90, "building compacted transcript")
	compacted := []session.Log{{
		ID:        session.NewID(),
		Role:      "system",
		Text:      "[Conversation Summary]\n\n" + text,
		Timestamp: time.Now(),
	}}

	e.log.WithAgent(string(req.Agent)).TimedEvent("summarized", start, map[string]any{
		"session": req.SessionID,
		"tab":     req.TabID,
	})

	return &Summary{
		Logs:            compacted,
		OriginalTokens:  originalTokens,
		CompactedTokens: tokens.CountLogs(compacted),
	}, nil
}

// batchSpec builds the non-interactive invocation for an agent. Agents
// without batch mode cannot summarize through the CLI path.
func batchSpec(agent session.AgentType, prompt, dir string) (exec.Spec, error) {
	if !capability.Has(agent, capability.FlagBatchMode) {
		return exec.Spec{}, fmt.Errorf("agent %s does not support batch summarization", agent)
	}

	switch agent {
	case session.AgentClaude:
		return exec.Spec{Name: "claude", Args: []string{"-p", prompt, "--output-format", "json"}, Dir: dir}, nil
	case session.AgentCodex:
		return exec.Spec{Name: "codex", Args: []string{"exec", "--json", prompt}, Dir: dir}, nil
	case session.AgentGemini:
		return exec.Spec{Name: "gemini", Args: []string{"-p", prompt}, Dir: dir}, nil
	case session.AgentOpenCode:
		return exec.Spec{Name: "opencode", Args: []string{"run", "--print-logs", prompt}, Dir: dir}, nil
	case session.AgentAider:
		return exec.Spec{Name: "aider", Args: []string{"--message", prompt, "--no-auto-commits", "--yes"}, Dir: dir}, nil
	}
	return exec.Spec{}, fmt.Errorf("no batch invocation known for agent %s", agent)
}

func buildTranscript(logs []session.Log) string {
	var sb strings.Builder
	for _, log := range logs {
		role := log.Role
		switch role {
		case "user":
			role = "User"
		case "assistant":
			role = "Assistant"
		case "system":
			role = "System"
		}
		sb.WriteString(fmt.Sprintf("%s: %s\n\n", role, log.Text))
	}
	return sb.String()
}
