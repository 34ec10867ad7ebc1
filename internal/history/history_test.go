package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joss/cockpit/internal/session"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func fixtureSession() *session.Session {
	now := time.Now().UTC().Truncate(time.Second)
	return &session.Session{
		ID:          session.NewID(),
		Name:        "refactor",
		ProjectRoot: "/repo",
		AgentType:   session.AgentClaude,
		Remote: &session.RemoteTarget{
			Host:       "build01",
			User:       "ci",
			WorkingDir: "/srv/repo",
			Env:        map[string]string{"K": "v"},
		},
		Tabs: []session.Tab{
			{
				ID:            session.NewID(),
				Name:          "Main",
				SaveToHistory: true,
				CreatedAt:     now,
				Logs: []session.Log{
					{ID: session.NewID(), Role: "user", Text: "hello", Timestamp: now},
					{ID: session.NewID(), Role: "assistant", Text: "hi", Timestamp: now.Add(time.Second)},
				},
			},
			{
				ID:        session.NewID(),
				Name:      "Scratch",
				CreatedAt: now,
				Logs:      []session.Log{{ID: session.NewID(), Role: "user", Text: "tmp", Timestamp: now}},
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestSaveAndGetSession(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	sess := fixtureSession()
	sess.ActiveTabID = sess.Tabs[0].ID
	require.NoError(t, store.SaveSession(ctx, sess))

	got, err := store.GetSession(ctx, sess.ID)
	require.NoError(t, err)

	assert.Equal(t, sess.Name, got.Name)
	assert.Equal(t, sess.AgentType, got.AgentType)
	assert.Equal(t, sess.ActiveTabID, got.ActiveTabID)
	require.NotNil(t, got.Remote)
	assert.Equal(t, "build01", got.Remote.Host)
	assert.Equal(t, map[string]string{"K": "v"}, got.Remote.Env)

	// Only the saveToHistory tab is persisted.
	require.Len(t, got.Tabs, 1)
	assert.Equal(t, "Main", got.Tabs[0].Name)
	require.Len(t, got.Tabs[0].Logs, 2)
	assert.Equal(t, "hello", got.Tabs[0].Logs[0].Text)
	assert.Equal(t, "hi", got.Tabs[0].Logs[1].Text)
}

func TestSaveSessionUpsert(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	sess := fixtureSession()
	require.NoError(t, store.SaveSession(ctx, sess))

	sess.Name = "renamed"
	sess.Tabs[0].Logs = append(sess.Tabs[0].Logs, session.Log{
		ID: session.NewID(), Role: "user", Text: "more", Timestamp: time.Now().UTC(),
	})
	require.NoError(t, store.SaveSession(ctx, sess))

	got, err := store.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)
	assert.Len(t, got.Tabs[0].Logs, 3)

	sessions, err := store.ListSessions(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestGetSessionNotFound(t *testing.T) {
	store := openTestStore(t)
	_, err := store.GetSession(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestListSessionsOrder(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	older := fixtureSession()
	older.UpdatedAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, store.SaveSession(ctx, older))

	newer := fixtureSession()
	newer.ID = session.NewID()
	newer.Name = "latest"
	newer.UpdatedAt = time.Now().UTC()
	require.NoError(t, store.SaveSession(ctx, newer))

	sessions, err := store.ListSessions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "latest", sessions[0].Name)
}

func TestDeleteSession(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	sess := fixtureSession()
	require.NoError(t, store.SaveSession(ctx, sess))
	require.NoError(t, store.DeleteSession(ctx, sess.ID))

	_, err := store.GetSession(ctx, sess.ID)
	assert.Error(t, err)

	sessions, err := store.ListSessions(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}
