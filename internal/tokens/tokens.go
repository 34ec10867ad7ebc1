// Package tokens provides token counting using tiktoken-go.
// Used for compaction accounting and context sizing.
package tokens

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/joss/cockpit/internal/session"
)

// Counter provides token counting for logs and text.
// Uses cl100k_base encoding (used by Claude and GPT-4).
type Counter struct {
	enc  *tiktoken.Tiktoken
	once sync.Once
	err  error
}

var defaultCounter = &Counter{}

// Count returns the number of tokens in the given text.
func Count(text string) int {
	return defaultCounter.Count(text)
}

// CountLogs returns total tokens for a slice of logs.
func CountLogs(logs []session.Log) int {
	return defaultCounter.CountLogs(logs)
}

// Count returns the number of tokens in the given text.
func (c *Counter) Count(text string) int {
	c.init()
	if c.err != nil || c.enc == nil {
		// Fallback: rough estimate (4 chars per token)
		return len(text) / 4
	}
	return len(c.enc.Encode(text, nil, nil))
}

// CountLogs returns total tokens for a slice of logs.
func (c *Counter) CountLogs(logs []session.Log) int {
	total := 0
	for _, log := range logs {
		// Base overhead per entry (role, formatting)
		total += 4 + c.Count(log.Text)
	}
	return total
}

func (c *Counter) init() {
	c.once.Do(func() {
		c.enc, c.err = tiktoken.GetEncoding("cl100k_base")
	})
}
