package agentout

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joss/cockpit/internal/session"
)

// --- Classification Tests ---

func TestIsStructured(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"json first line", `{"text":"hi"}`, true},
		{"leading blank lines", "\n  \n{\"text\":\"hi\"}", true},
		{"plain text", "Hello, world", false},
		{"banner then json", "Starting agent...\n{\"text\":\"hi\"}", false},
		{"indented json", `  {"text":"hi"}`, true},
		{"empty", "", false},
		{"whitespace only", "  \n\t\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsStructured(tt.raw))
		})
	}
}

// --- Generic Extraction Tests ---

func TestExtractPlainTextPassthrough(t *testing.T) {
	// Plain input returns verbatim: no trimming, no line processing.
	inputs := []string{
		"Hello, world",
		"  padded  \nsecond line\n",
		"banner\n{\"result\":\"never parsed\"}",
		"",
	}
	for _, in := range inputs {
		assert.Equal(t, in, Extract(in))
	}
}

func TestExtractResultField(t *testing.T) {
	assert.Equal(t, "R", Extract(`{"result": "R"}`))
}

func TestExtractTextAccumulation(t *testing.T) {
	raw := "{\"text\":\"A\"}\n{\"text\":\"B\"}"
	assert.Equal(t, "A\nB", Extract(raw))
}

func TestExtractResultWinsOverPriorText(t *testing.T) {
	raw := "{\"text\":\"A\"}\n{\"text\":\"B\"}\n{\"result\":\"R\"}"
	assert.Equal(t, "R", Extract(raw))
}

func TestExtractFirstResultShortCircuits(t *testing.T) {
	// Scanning is in order: the first result line wins, not the last.
	raw := "{\"result\":\"first\"}\n{\"result\":\"second\"}"
	assert.Equal(t, "first", Extract(raw))
}

func TestExtractFieldPriority(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"part.text", `{"part":{"text":"P"}}`, "P"},
		{"message.content", `{"message":{"content":"M"}}`, "M"},
		{"text beats part.text", `{"text":"T","part":{"text":"P"}}`, "T"},
		{"result beats text", `{"result":"R","text":"T"}`, "R"},
		{"non-string content ignored", `{"message":{"content":123}}`, ""},
		{"non-string result falls through", `{"result":42,"text":"T"}`, "T"},
		{"no matching field", `{"type":"system","usage":{}}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.raw))
		})
	}
}

func TestExtractSkipsMalformedLines(t *testing.T) {
	// Once classified JSONL, broken lines are dropped, not echoed.
	raw := "{\"text\":\"A\"}\nnot json at all\n{\"text\":\"B\"}"
	assert.Equal(t, "A\nB", Extract(raw))
}

func TestExtractSkipsEmptyLines(t *testing.T) {
	raw := "{\"text\":\"A\"}\n\n   \n{\"text\":\"B\"}\n"
	assert.Equal(t, "A\nB", Extract(raw))
}

func TestExtractEmptyWhenNothingMatches(t *testing.T) {
	assert.Equal(t, "", Extract(`{"type":"noise"}`))
}

// --- Growing Buffer Tests ---

func TestExtractRepeatedOnGrowingBuffer(t *testing.T) {
	// The extractor is called on the accumulated buffer after every read;
	// earlier calls must not affect later ones.
	chunk1 := `{"text":"partial"}`
	assert.Equal(t, "partial", Extract(chunk1))

	chunk2 := chunk1 + "\n" + `{"result":"final"}`
	assert.Equal(t, "final", Extract(chunk2))
}

// --- Agent-Aware Entry Point Tests ---

func TestExtractForAgentUsesRegisteredParser(t *testing.T) {
	raw := `{"type":"result","result":"done","subtype":"success"}`
	assert.Equal(t, "done", ExtractForAgent(raw, session.AgentClaude))
}

func TestExtractForAgentUnknownFallsBackToGeneric(t *testing.T) {
	raw := `{"text":"A"}`
	assert.Equal(t, "A", ExtractForAgent(raw, session.AgentType("mystery")))
}

func TestExtractForAgentPlainTextPassthrough(t *testing.T) {
	raw := "shell output\n$ ls\n"
	assert.Equal(t, raw, ExtractForAgent(raw, session.AgentClaude))
}

type panickyParser struct{}

func (panickyParser) ParseLine(line string) (Event, bool) {
	panic("malformed line")
}

func TestExtractForAgentParserPanicTreatedAsSkip(t *testing.T) {
	RegisterParser("panicky", panickyParser{})
	defer delete(parsers, "panicky")

	raw := `{"text":"A"}`
	assert.Equal(t, "", ExtractForAgent(raw, session.AgentType("panicky")))
}
