package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionWithTabs(names ...string) *Session {
	sess := &Session{ID: NewID(), Name: "work", AgentType: AgentClaude}
	for _, name := range names {
		sess.Tabs = append(sess.Tabs, Tab{ID: NewID(), Name: name})
	}
	return sess
}

func TestFindTab(t *testing.T) {
	sess := sessionWithTabs("a", "b")
	assert.Equal(t, "b", sess.FindTab(sess.Tabs[1].ID).Name)
	assert.Nil(t, sess.FindTab("missing"))
}

func TestActiveTab(t *testing.T) {
	sess := sessionWithTabs("a", "b")
	sess.ActiveTabID = sess.Tabs[1].ID
	require.NotNil(t, sess.ActiveTab())
	assert.Equal(t, "b", sess.ActiveTab().Name)

	sess.ActiveTabID = ""
	assert.Nil(t, sess.ActiveTab())
}

func TestInsertTabAfterMiddle(t *testing.T) {
	sess := sessionWithTabs("a", "b", "c")
	anchor := sess.Tabs[1].ID

	tab, ok := sess.InsertTabAfter(TabSpec{AfterTabID: anchor, Name: "b2", SaveToHistory: true})
	require.True(t, ok)
	require.NotNil(t, tab)

	names := make([]string, len(sess.Tabs))
	for i, tb := range sess.Tabs {
		names[i] = tb.Name
	}
	assert.Equal(t, []string{"a", "b", "b2", "c"}, names)
	assert.Equal(t, tab.ID, sess.Tabs[2].ID)
	assert.True(t, sess.Tabs[2].SaveToHistory)
	assert.NotEmpty(t, tab.ID)
}

func TestInsertTabAfterLast(t *testing.T) {
	sess := sessionWithTabs("a")
	_, ok := sess.InsertTabAfter(TabSpec{AfterTabID: sess.Tabs[0].ID, Name: "b"})
	require.True(t, ok)
	assert.Equal(t, "b", sess.Tabs[1].Name)
}

func TestInsertTabAfterMissingAnchor(t *testing.T) {
	sess := sessionWithTabs("a")
	tab, ok := sess.InsertTabAfter(TabSpec{AfterTabID: "missing", Name: "b"})
	assert.False(t, ok)
	assert.Nil(t, tab)
	assert.Len(t, sess.Tabs, 1)
}

func TestRemoteTargetAddr(t *testing.T) {
	assert.Equal(t, "ci@build01", (&RemoteTarget{Host: "build01", User: "ci"}).Addr())
	assert.Equal(t, "build01", (&RemoteTarget{Host: "build01"}).Addr())
}

func TestNewIDUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewID()
		assert.False(t, seen[id])
		seen[id] = true
	}
}
