// Package summarize implements the cancellable compact-and-continue workflow:
// extract a tab's transcript, hand it to a summarization engine, and insert
// the compacted result as a new tab directly after the source.
package summarize

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/joss/cockpit/internal/logging"
	"github.com/joss/cockpit/internal/session"
)

// State is the workflow lifecycle state.
type State int

const (
	StateIdle State = iota
	StateSummarizing
	StateComplete
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSummarizing:
		return "summarizing"
	case StateComplete:
		return "complete"
	case StateError:
		return "error"
	}
	return "unknown"
}

// Progress reports the current stage while summarizing.
type Progress struct {
	Stage   string `json:"stage"`
	Percent int    `json:"percent"`
	Message string `json:"message"`
}

// Result describes a completed summarization.
type Result struct {
	Success          bool   `json:"success"`
	OriginalTokens   int    `json:"originalTokens"`
	CompactedTokens  int    `json:"compactedTokens"`
	ReductionPercent int    `json:"reductionPercent"`
	NewTabID         string `json:"newTabId"`
}

// Status is an observable snapshot of the workflow.
type Status struct {
	State    State
	Progress *Progress
	Result   *Result
	Err      string
}

// Request identifies the source of a summarization run.
type Request struct {
	SessionID   string
	TabID       string
	ProjectRoot string
	Agent       session.AgentType
}

// Summary is what an engine produces: the compacted logs plus token counts.
type Summary struct {
	Logs            []session.Log
	OriginalTokens  int
	CompactedTokens int
}

// Engine is the external summarization collaborator.
type Engine interface {
	// CanSummarize checks content sufficiency for a tab.
	CanSummarize(tab *session.Tab) bool
	// MinLogs is the minimum transcript length required.
	MinLogs() int
	// Summarize produces the compacted transcript. Blocking; honors ctx.
	Summarize(ctx context.Context, req Request, logs []session.Log, onProgress func(Progress)) (*Summary, error)
	// CompactedTabName derives the new tab's name from the source name.
	CompactedTabName(name string) string
	// Cancel aborts an in-flight Summarize call.
	Cancel()
}

// Workflow runs one summarization at a time for a single session.
// Cancellation is cooperative: Cancel resets the observable state
// immediately, and the in-flight engine call is suppressed on return.
type Workflow struct {
	engine Engine
	log    *logging.Logger

	mu        sync.Mutex
	sess      *session.Session
	state     State
	progress  *Progress
	result    *Result
	errMsg    string
	cancelled bool
}

// NewWorkflow creates an idle workflow for the given engine.
func NewWorkflow(engine Engine) *Workflow {
	return &Workflow{
		engine: engine,
		log:    logging.New("summarize"),
	}
}

// SetSession attaches the active session the workflow operates on.
func (w *Workflow) SetSession(sess *session.Session) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sess = sess
}

// Status returns the current observable state.
func (w *Workflow) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Status{
		State:    w.state,
		Progress: w.progress,
		Result:   w.result,
		Err:      w.errMsg,
	}
}

// CanSummarize delegates the content-sufficiency check to the engine.
func (w *Workflow) CanSummarize(tab *session.Tab) bool {
	return w.engine.CanSummarize(tab)
}

// MinLogsRequired is the engine's minimum transcript length.
func (w *Workflow) MinLogsRequired() int {
	return w.engine.MinLogs()
}

// Start summarizes the tab with the given id. Guard failures and engine
// errors land in the Error state and are also returned; the caller never
// needs to catch anything beyond the returned error. On success the session
// snapshot is returned with the compacted tab inserted directly after the
// source and ActiveTabID switched to it. A cancelled run returns (nil, nil)
// with no state change.
func (w *Workflow) Start(ctx context.Context, sourceTabID string) (*session.Session, error) {
	w.mu.Lock()
	if w.state == StateSummarizing {
		w.mu.Unlock()
		return nil, fmt.Errorf("summarization already in progress")
	}

	sess := w.sess
	if sess == nil {
		err := w.failLocked("no active session")
		w.mu.Unlock()
		return nil, err
	}
	tab := sess.FindTab(sourceTabID)
	if tab == nil {
		err := w.failLocked(fmt.Sprintf("tab not found: %s", sourceTabID))
		w.mu.Unlock()
		return nil, err
	}
	if len(tab.Logs) < w.engine.MinLogs() {
		err := w.failLocked(fmt.Sprintf("tab %q has %d logs, need at least %d", tab.Name, len(tab.Logs), w.engine.MinLogs()))
		w.mu.Unlock()
		return nil, err
	}

	// Capture before the engine call: tab insertion reallocates the slice.
	srcName := tab.Name
	srcSave := tab.SaveToHistory
	srcLogs := tab.Logs

	w.state = StateSummarizing
	w.cancelled = false
	w.result = nil
	w.errMsg = ""
	w.progress = &Progress{Stage: "starting", Message: "starting summarization"}
	w.mu.Unlock()

	req := Request{
		SessionID:   sess.ID,
		TabID:       sourceTabID,
		ProjectRoot: sess.ProjectRoot,
		Agent:       sess.AgentType,
	}
	summary, err := w.engine.Summarize(ctx, req, srcLogs, w.onProgress)

	w.mu.Lock()
	defer w.mu.Unlock()

	// Cancel already reset the state; the late result is discarded.
	if w.cancelled {
		return nil, nil
	}

	if err != nil {
		return nil, w.failLocked(err.Error())
	}
	if summary == nil {
		return nil, w.failLocked("summarization returned no result")
	}

	newTab, ok := sess.InsertTabAfter(session.TabSpec{
		AfterTabID:    sourceTabID,
		Name:          w.engine.CompactedTabName(srcName),
		Logs:          summary.Logs,
		SaveToHistory: srcSave,
	})
	if !ok {
		return nil, w.failLocked("failed to create compacted tab")
	}
	sess.ActiveTabID = newTab.ID

	w.state = StateComplete
	w.progress = nil
	w.result = &Result{
		Success:          true,
		OriginalTokens:   summary.OriginalTokens,
		CompactedTokens:  summary.CompactedTokens,
		ReductionPercent: reductionPercent(summary.OriginalTokens, summary.CompactedTokens),
		NewTabID:         newTab.ID,
	}
	w.log.WithSession(sess.ID).Info("summarize_complete", map[string]any{
		"tab":       sourceTabID,
		"newTab":    newTab.ID,
		"reduction": w.result.ReductionPercent,
	})
	return sess, nil
}

// Cancel flags the in-flight run, forwards the cancel to the engine, and
// resets the observable state immediately rather than waiting for the
// engine call to notice.
func (w *Workflow) Cancel() {
	w.mu.Lock()
	w.cancelled = true
	w.state = StateIdle
	w.progress = nil
	w.mu.Unlock()

	w.engine.Cancel()
}

func (w *Workflow) onProgress(p Progress) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancelled {
		return
	}
	w.progress = &p
}

// failLocked records a precondition or engine failure. Callers hold w.mu.
func (w *Workflow) failLocked(msg string) error {
	w.state = StateError
	w.progress = nil
	w.errMsg = msg
	return fmt.Errorf("%s", msg)
}

func reductionPercent(original, compacted int) int {
	if original <= 0 {
		return 0
	}
	return int(math.Round((1 - float64(compacted)/float64(original)) * 100))
}
