// Package history persists sessions and their tabs to sqlite. Only tabs
// flagged saveToHistory are written; transient tabs stay in memory.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/joss/cockpit/internal/session"
)

// Store is a sqlite-backed session history.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the history database under dataDir.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "history.db")
	db, err := sql.Open("sqlite3", dbPath+"?_journal=WAL&_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		project_root TEXT NOT NULL,
		agent_type TEXT NOT NULL,
		active_tab_id TEXT,
		remote_json TEXT,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at DESC);

	CREATE TABLE IF NOT EXISTS tabs (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		name TEXT NOT NULL,
		position INTEGER NOT NULL,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_tabs_session ON tabs(session_id, position);

	CREATE TABLE IF NOT EXISTS logs (
		id TEXT PRIMARY KEY,
		tab_id TEXT NOT NULL,
		role TEXT NOT NULL,
		text TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		FOREIGN KEY (tab_id) REFERENCES tabs(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_logs_tab ON logs(tab_id, timestamp);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveSession upserts a session and its saveToHistory tabs.
func (s *Store) SaveSession(ctx context.Context, sess *session.Session) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	remoteJSON := []byte("null")
	if sess.Remote != nil {
		remoteJSON, _ = json.Marshal(sess.Remote)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sessions (id, name, project_root, agent_type, active_tab_id, remote_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name, project_root=excluded.project_root,
			agent_type=excluded.agent_type, active_tab_id=excluded.active_tab_id,
			remote_json=excluded.remote_json, updated_at=excluded.updated_at
	`, sess.ID, sess.Name, sess.ProjectRoot, string(sess.AgentType), sess.ActiveTabID,
		string(remoteJSON), sess.CreatedAt, sess.UpdatedAt); err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}

	// Rewrite tabs and logs wholesale; positions come from tab order.
	if _, err := tx.ExecContext(ctx, `DELETE FROM logs WHERE tab_id IN (SELECT id FROM tabs WHERE session_id = ?)`, sess.ID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tabs WHERE session_id = ?`, sess.ID); err != nil {
		return err
	}

	for pos, tab := range sess.Tabs {
		if !tab.SaveToHistory {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO tabs (id, session_id, name, position, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, tab.ID, sess.ID, tab.Name, pos, tab.CreatedAt); err != nil {
			return fmt.Errorf("insert tab %s: %w", tab.ID, err)
		}
		for _, log := range tab.Logs {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO logs (id, tab_id, role, text, timestamp)
				VALUES (?, ?, ?, ?, ?)
			`, log.ID, tab.ID, log.Role, log.Text, log.Timestamp); err != nil {
				return fmt.Errorf("insert log %s: %w", log.ID, err)
			}
		}
	}

	return tx.Commit()
}

// GetSession loads a session with its persisted tabs and logs.
func (s *Store) GetSession(ctx context.Context, id string) (*session.Session, error) {
	var sess session.Session
	var agentType string
	var remoteJSON sql.NullString
	var activeTab sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, project_root, agent_type, active_tab_id, remote_json, created_at, updated_at
		FROM sessions WHERE id = ?
	`, id).Scan(&sess.ID, &sess.Name, &sess.ProjectRoot, &agentType, &activeTab,
		&remoteJSON, &sess.CreatedAt, &sess.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session not found: %s", id)
	}
	if err != nil {
		return nil, err
	}

	sess.AgentType = session.AgentType(agentType)
	sess.ActiveTabID = activeTab.String
	if remoteJSON.Valid && remoteJSON.String != "null" {
		var remote session.RemoteTarget
		if err := json.Unmarshal([]byte(remoteJSON.String), &remote); err == nil {
			sess.Remote = &remote
		}
	}

	tabs, err := s.loadTabs(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.Tabs = tabs
	return &sess, nil
}

func (s *Store) loadTabs(ctx context.Context, sessionID string) ([]session.Tab, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, created_at FROM tabs
		WHERE session_id = ? ORDER BY position
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tabs []session.Tab
	for rows.Next() {
		var tab session.Tab
		if err := rows.Scan(&tab.ID, &tab.Name, &tab.CreatedAt); err != nil {
			return nil, err
		}
		tab.SaveToHistory = true
		tabs = append(tabs, tab)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range tabs {
		logs, err := s.loadLogs(ctx, tabs[i].ID)
		if err != nil {
			return nil, err
		}
		tabs[i].Logs = logs
	}
	return tabs, nil
}

func (s *Store) loadLogs(ctx context.Context, tabID string) ([]session.Log, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, role, text, timestamp FROM logs
		WHERE tab_id = ? ORDER BY timestamp, id
	`, tabID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []session.Log
	for rows.Next() {
		var log session.Log
		if err := rows.Scan(&log.ID, &log.Role, &log.Text, &log.Timestamp); err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

// SessionSummary is one row in the session listing.
type SessionSummary struct {
	ID        string
	Name      string
	AgentType session.AgentType
	TabCount  int
	UpdatedAt string
}

// ListSessions returns persisted sessions, most recently updated first.
func (s *Store) ListSessions(ctx context.Context, limit int) ([]SessionSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.name, s.agent_type,
		       (SELECT COUNT(*) FROM tabs t WHERE t.session_id = s.id),
		       s.updated_at
		FROM sessions s ORDER BY s.updated_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SessionSummary
	for rows.Next() {
		var sum SessionSummary
		var agentType string
		if err := rows.Scan(&sum.ID, &sum.Name, &agentType, &sum.TabCount, &sum.UpdatedAt); err != nil {
			return nil, err
		}
		sum.AgentType = session.AgentType(agentType)
		out = append(out, sum)
	}
	return out, rows.Err()
}

// DeleteSession removes a session and its tabs and logs.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM logs WHERE tab_id IN (SELECT id FROM tabs WHERE session_id = ?)`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tabs WHERE session_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}
