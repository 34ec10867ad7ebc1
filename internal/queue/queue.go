// Package queue holds per-session input that arrived while the session was
// busy. It is a pure ordered collection: dispatch policy lives with the
// scheduler, not here.
package queue

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ItemKind distinguishes shell commands from agent messages.
type ItemKind string

const (
	KindCommand ItemKind = "command"
	KindMessage ItemKind = "message"
)

// Item is one queued input. Command items carry Command; message items carry
// Text. TabName and Images are optional.
type Item struct {
	ID        string    `json:"id"`
	Kind      ItemKind  `json:"kind"`
	Command   string    `json:"command,omitempty"`
	Text      string    `json:"text,omitempty"`
	TabName   string    `json:"tabName,omitempty"`
	Images    []string  `json:"images,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Queue is a FIFO of pending items, safe for interleaved enqueue/remove/list
// from the UI and scheduler roles. Every mutation replaces the backing slice
// wholesale so readers never observe a torn view.
type Queue struct {
	mu    sync.Mutex
	items []Item
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{}
}

// Enqueue appends an item. An empty id is assigned a fresh uuid; a duplicate
// id is rejected, since each item must be consumed exactly once.
func (q *Queue) Enqueue(item Item) (Item, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	for _, existing := range q.items {
		if existing.ID == item.ID {
			return Item{}, fmt.Errorf("queue: duplicate item id %s", item.ID)
		}
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}

	next := make([]Item, len(q.items), len(q.items)+1)
	copy(next, q.items)
	q.items = append(next, item)
	return item, nil
}

// Remove deletes the item with the given id, preserving order of the rest.
// Removing an id that is not present is a no-op returning false.
func (q *Queue) Remove(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, item := range q.items {
		if item.ID == id {
			next := make([]Item, 0, len(q.items)-1)
			next = append(next, q.items[:i]...)
			next = append(next, q.items[i+1:]...)
			q.items = next
			return true
		}
	}
	return false
}

// List returns the pending items in insertion order. The slice is a copy.
func (q *Queue) List() []Item {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Item, len(q.items))
	copy(out, q.items)
	return out
}

// Len returns the number of pending items.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Clear drops all pending items.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = nil
}
