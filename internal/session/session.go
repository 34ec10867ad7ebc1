// Package session defines the data shapes shared by the coordination core:
// sessions, tabs, logs, and the remote execution target owned by session
// configuration.
package session

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// AgentType identifies which external CLI drives a session.
type AgentType string

const (
	AgentClaude   AgentType = "claude"
	AgentCodex    AgentType = "codex"
	AgentGemini   AgentType = "gemini"
	AgentOpenCode AgentType = "opencode"
	AgentAider    AgentType = "aider"
	// AgentShell marks a plain shell session with no agent semantics.
	AgentShell AgentType = "shell"
)

// Log is a single transcript entry within a tab.
type Log struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"` // user, assistant, system
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Tab is one conversation pane within a session.
type Tab struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Logs          []Log     `json:"logs"`
	SaveToHistory bool      `json:"saveToHistory"`
	CreatedAt     time.Time `json:"createdAt"`
}

// RemoteTarget holds the connection parameters for running a session's
// commands on a remote host instead of locally.
type RemoteTarget struct {
	Host       string            `json:"host"`
	User       string            `json:"user,omitempty"`
	Port       int               `json:"port,omitempty"`
	WorkingDir string            `json:"workingDir,omitempty"`
	Env        map[string]string `json:"env,omitempty"`
}

// Addr returns the ssh destination, user@host or bare host.
func (t *RemoteTarget) Addr() string {
	if t.User != "" {
		return t.User + "@" + t.Host
	}
	return t.Host
}

// Session is an interactive session with one agent (or shell) and its tabs.
type Session struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	ProjectRoot string        `json:"projectRoot"`
	AgentType   AgentType     `json:"agentType"`
	Tabs        []Tab         `json:"tabs"`
	ActiveTabID string        `json:"activeTabId"`
	Remote      *RemoteTarget `json:"remote,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// NewID returns a fresh ULID string, the id scheme for sessions, tabs and logs.
func NewID() string {
	return ulid.Make().String()
}

// FindTab returns the tab with the given id, or nil.
func (s *Session) FindTab(id string) *Tab {
	for i := range s.Tabs {
		if s.Tabs[i].ID == id {
			return &s.Tabs[i]
		}
	}
	return nil
}

// ActiveTab returns the currently active tab, or nil.
func (s *Session) ActiveTab() *Tab {
	return s.FindTab(s.ActiveTabID)
}

// TabSpec describes a tab to be created at a position.
type TabSpec struct {
	AfterTabID    string
	Name          string
	Logs          []Log
	SaveToHistory bool
}

// InsertTabAfter creates a tab per spec and inserts it directly after
// spec.AfterTabID. Returns the new tab and false if the anchor tab does not
// exist; the session is not modified in that case.
func (s *Session) InsertTabAfter(spec TabSpec) (*Tab, bool) {
	idx := -1
	for i := range s.Tabs {
		if s.Tabs[i].ID == spec.AfterTabID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false
	}

	tab := Tab{
		ID:            NewID(),
		Name:          spec.Name,
		Logs:          spec.Logs,
		SaveToHistory: spec.SaveToHistory,
		CreatedAt:     time.Now(),
	}

	tabs := make([]Tab, 0, len(s.Tabs)+1)
	tabs = append(tabs, s.Tabs[:idx+1]...)
	tabs = append(tabs, tab)
	tabs = append(tabs, s.Tabs[idx+1:]...)
	s.Tabs = tabs
	s.UpdatedAt = time.Now()

	return &s.Tabs[idx+1], true
}
