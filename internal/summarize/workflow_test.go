package summarize

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joss/cockpit/internal/session"
)

// fakeEngine scripts the external summarization collaborator.
type fakeEngine struct {
	minLogs   int
	summary   *Summary
	err       error
	calls     int
	cancelled bool

	// block, when set, holds Summarize until released.
	block   chan struct{}
	started chan struct{}

	progress []Progress
}

func (f *fakeEngine) CanSummarize(tab *session.Tab) bool {
	return tab != nil && len(tab.Logs) >= f.minLogs
}

func (f *fakeEngine) MinLogs() int { return f.minLogs }

func (f *fakeEngine) CompactedTabName(name string) string {
	return fmt.Sprintf("%s Compacted %s", name, time.Now().Format("2006-01-02"))
}

func (f *fakeEngine) Cancel() { f.cancelled = true }

func (f *fakeEngine) Summarize(ctx context.Context, req Request, logs []session.Log, onProgress func(Progress)) (*Summary, error) {
	f.calls++
	for _, p := range f.progress {
		onProgress(p)
	}
	if f.started != nil {
		close(f.started)
	}
	if f.block != nil {
		<-f.block
	}
	return f.summary, f.err
}

func testSession(tabNames []string, logsPerTab int) *session.Session {
	sess := &session.Session{
		ID:          session.NewID(),
		Name:        "work",
		ProjectRoot: "/repo",
		AgentType:   session.AgentClaude,
	}
	for _, name := range tabNames {
		tab := session.Tab{
			ID:            session.NewID(),
			Name:          name,
			SaveToHistory: true,
			CreatedAt:     time.Now(),
		}
		for i := 0; i < logsPerTab; i++ {
			tab.Logs = append(tab.Logs, session.Log{
				ID:        session.NewID(),
				Role:      "user",
				Text:      fmt.Sprintf("log %d", i),
				Timestamp: time.Now(),
			})
		}
		sess.Tabs = append(sess.Tabs, tab)
	}
	sess.ActiveTabID = sess.Tabs[0].ID
	return sess
}

// --- Guard Tests ---

func TestStartNoActiveSession(t *testing.T) {
	engine := &fakeEngine{minLogs: 5}
	w := NewWorkflow(engine)

	_, err := w.Start(context.Background(), "tab-1")
	require.Error(t, err)
	assert.Equal(t, StateError, w.Status().State)
	assert.Contains(t, w.Status().Err, "no active session")
	assert.Zero(t, engine.calls)
}

func TestStartTabNotFound(t *testing.T) {
	engine := &fakeEngine{minLogs: 5}
	w := NewWorkflow(engine)
	w.SetSession(testSession([]string{"Main"}, 10))

	_, err := w.Start(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, StateError, w.Status().State)
	assert.Zero(t, engine.calls)
}

func TestStartBelowMinLogs(t *testing.T) {
	engine := &fakeEngine{minLogs: 5}
	w := NewWorkflow(engine)
	sess := testSession([]string{"Main"}, 3)
	w.SetSession(sess)

	_, err := w.Start(context.Background(), sess.Tabs[0].ID)
	require.Error(t, err)
	assert.Equal(t, StateError, w.Status().State)
	// Engine must not be invoked when the guard fails.
	assert.Zero(t, engine.calls)
}

func TestStartWhileSummarizing(t *testing.T) {
	engine := &fakeEngine{
		minLogs: 1,
		summary: &Summary{OriginalTokens: 10, CompactedTokens: 5},
		block:   make(chan struct{}),
		started: make(chan struct{}),
	}
	w := NewWorkflow(engine)
	sess := testSession([]string{"Main"}, 5)
	w.SetSession(sess)

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Start(context.Background(), sess.Tabs[0].ID)
	}()
	<-engine.started

	_, err := w.Start(context.Background(), sess.Tabs[0].ID)
	assert.Error(t, err)
	assert.Equal(t, StateSummarizing, w.Status().State)

	close(engine.block)
	<-done
}

// --- Success Path ---

func TestStartEndToEnd(t *testing.T) {
	engine := &fakeEngine{
		minLogs: 5,
		summary: &Summary{
			Logs:            []session.Log{{ID: session.NewID(), Role: "system", Text: "summary"}},
			OriginalTokens:  1000,
			CompactedTokens: 400,
		},
	}
	w := NewWorkflow(engine)
	sess := testSession([]string{"Scratch", "Design Notes", "Trailing"}, 50)
	source := sess.Tabs[1]
	w.SetSession(sess)

	updated, err := w.Start(context.Background(), source.ID)
	require.NoError(t, err)
	require.NotNil(t, updated)

	status := w.Status()
	assert.Equal(t, StateComplete, status.State)
	require.NotNil(t, status.Result)
	assert.True(t, status.Result.Success)
	assert.Equal(t, 60, status.Result.ReductionPercent)
	assert.Equal(t, 1000, status.Result.OriginalTokens)
	assert.Equal(t, 400, status.Result.CompactedTokens)

	// New tab sits directly after the source, with the derived name.
	require.Len(t, updated.Tabs, 4)
	newTab := updated.Tabs[2]
	wantName := fmt.Sprintf("Design Notes Compacted %s", time.Now().Format("2006-01-02"))
	assert.Equal(t, wantName, newTab.Name)
	assert.Equal(t, "Trailing", updated.Tabs[3].Name)
	assert.Equal(t, newTab.ID, status.Result.NewTabID)
	assert.Equal(t, newTab.ID, updated.ActiveTabID)

	// saveToHistory carries over from the source tab.
	assert.True(t, newTab.SaveToHistory)
	require.Len(t, newTab.Logs, 1)
	assert.Equal(t, "summary", newTab.Logs[0].Text)
}

func TestReductionPercent(t *testing.T) {
	tests := []struct {
		original, compacted, want int
	}{
		{1000, 400, 60},
		{1000, 1000, 0},
		{3, 1, 67},
		{0, 5, 0},
		{100, 0, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, reductionPercent(tt.original, tt.compacted), "%d/%d", tt.compacted, tt.original)
	}
}

// --- Failure Path ---

func TestStartEngineError(t *testing.T) {
	engine := &fakeEngine{minLogs: 1, err: errors.New("model unavailable")}
	w := NewWorkflow(engine)
	sess := testSession([]string{"Main"}, 5)
	w.SetSession(sess)

	_, err := w.Start(context.Background(), sess.Tabs[0].ID)
	require.Error(t, err)
	assert.Equal(t, StateError, w.Status().State)
	assert.Contains(t, w.Status().Err, "model unavailable")
	// The session is left untouched on failure.
	assert.Len(t, sess.Tabs, 1)
}

func TestStartEngineNilResult(t *testing.T) {
	engine := &fakeEngine{minLogs: 1}
	w := NewWorkflow(engine)
	sess := testSession([]string{"Main"}, 5)
	w.SetSession(sess)

	_, err := w.Start(context.Background(), sess.Tabs[0].ID)
	require.Error(t, err)
	assert.Equal(t, StateError, w.Status().State)
}

// --- Cancellation ---

func TestCancelSuppressesResult(t *testing.T) {
	engine := &fakeEngine{
		minLogs: 1,
		summary: &Summary{OriginalTokens: 100, CompactedTokens: 10},
		block:   make(chan struct{}),
		started: make(chan struct{}),
	}
	w := NewWorkflow(engine)
	sess := testSession([]string{"Main"}, 5)
	w.SetSession(sess)

	type outcome struct {
		sess *session.Session
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		s, err := w.Start(context.Background(), sess.Tabs[0].ID)
		done <- outcome{s, err}
	}()
	<-engine.started

	w.Cancel()
	// State resets immediately, before the engine call returns.
	assert.Equal(t, StateIdle, w.Status().State)
	assert.Nil(t, w.Status().Progress)
	assert.True(t, engine.cancelled)

	close(engine.block)
	out := <-done

	// Cancellation is not an error and produces no result.
	assert.NoError(t, out.err)
	assert.Nil(t, out.sess)
	assert.Equal(t, StateIdle, w.Status().State)
	assert.Len(t, sess.Tabs, 1)
}

func TestCancelSuppressesEngineError(t *testing.T) {
	engine := &fakeEngine{
		minLogs: 1,
		err:     errors.New("interrupted"),
		block:   make(chan struct{}),
		started: make(chan struct{}),
	}
	w := NewWorkflow(engine)
	sess := testSession([]string{"Main"}, 5)
	w.SetSession(sess)

	done := make(chan error, 1)
	go func() {
		_, err := w.Start(context.Background(), sess.Tabs[0].ID)
		done <- err
	}()
	<-engine.started

	w.Cancel()
	close(engine.block)

	assert.NoError(t, <-done)
	assert.Equal(t, StateIdle, w.Status().State)
	assert.Empty(t, w.Status().Err)
}

// --- Progress ---

func TestProgressObservable(t *testing.T) {
	engine := &fakeEngine{
		minLogs:  1,
		summary:  &Summary{OriginalTokens: 10, CompactedTokens: 5},
		progress: []Progress{{Stage: "summarize", Percent: 50, Message: "working"}},
		block:    make(chan struct{}),
		started:  make(chan struct{}),
	}
	w := NewWorkflow(engine)
	sess := testSession([]string{"Main"}, 5)
	w.SetSession(sess)

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Start(context.Background(), sess.Tabs[0].ID)
	}()
	<-engine.started

	status := w.Status()
	assert.Equal(t, StateSummarizing, status.State)
	require.NotNil(t, status.Progress)
	assert.Equal(t, "summarize", status.Progress.Stage)
	assert.Equal(t, 50, status.Progress.Percent)

	close(engine.block)
	<-done
	assert.Nil(t, w.Status().Progress)
}

// --- Delegation ---

func TestCanSummarizeDelegates(t *testing.T) {
	engine := &fakeEngine{minLogs: 3}
	w := NewWorkflow(engine)

	tab := &session.Tab{Logs: make([]session.Log, 3)}
	assert.True(t, w.CanSummarize(tab))
	assert.False(t, w.CanSummarize(&session.Tab{}))
	assert.Equal(t, 3, w.MinLogsRequired())
}
