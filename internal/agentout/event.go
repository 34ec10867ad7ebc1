// Package agentout interprets the heterogeneous line-oriented output of agent
// CLIs and reduces it to a single display text per raw-output snapshot.
package agentout

// EventKind distinguishes incremental text from a terminal result.
type EventKind int

const (
	// KindText is a streaming fragment; fragments accumulate line by line.
	KindText EventKind = iota
	// KindResult is a final output; it discards all accumulated text.
	KindResult
)

// Event is a normalized output unit produced from one JSONL line.
type Event struct {
	Kind EventKind
	Text string
}
