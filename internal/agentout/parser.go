package agentout

import (
	"encoding/json"

	"github.com/joss/cockpit/internal/session"
)

// LineParser turns one raw JSONL line into a normalized event.
// ok=false means "this line contributes nothing" (unknown shape, parse
// failure, noise). Implementations should not panic; a panic is absorbed by
// the extractor and treated as ok=false.
type LineParser interface {
	ParseLine(line string) (Event, bool)
}

var parsers = map[session.AgentType]LineParser{}

// RegisterParser binds a parser to an agent type, replacing any previous one.
func RegisterParser(agent session.AgentType, p LineParser) {
	parsers[agent] = p
}

// LookupParser returns the parser registered for an agent, if any.
// Unknown agents fall back to the generic heuristic in the extractor.
func LookupParser(agent session.AgentType) (LineParser, bool) {
	p, ok := parsers[agent]
	return p, ok
}

func init() {
	RegisterParser(session.AgentClaude, claudeParser{})
	RegisterParser(session.AgentCodex, codexParser{})
}

// claudeParser understands the claude CLI stream-json schema: top-level
// "type" discriminates result lines from assistant messages whose content is
// an array of typed blocks.
type claudeParser struct{}

type claudeLine struct {
	Type    string `json:"type"`
	Subtype string `json:"subtype"`
	Result  string `json:"result"`
	Message struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"message"`
}

func (claudeParser) ParseLine(line string) (Event, bool) {
	var l claudeLine
	if err := json.Unmarshal([]byte(line), &l); err != nil {
		return Event{}, false
	}
	switch l.Type {
	case "result":
		return Event{Kind: KindResult, Text: l.Result}, true
	case "assistant":
		text := ""
		for _, block := range l.Message.Content {
			if block.Type == "text" {
				if text != "" {
					text += "\n"
				}
				text += block.Text
			}
		}
		if text == "" {
			return Event{}, false
		}
		return Event{Kind: KindText, Text: text}, true
	}
	return Event{}, false
}

// codexParser understands the codex CLI experimental JSON schema: completed
// items carry the text, and a final "turn.completed" marks nothing extractable
// by itself.
type codexParser struct{}

type codexLine struct {
	Type string `json:"type"`
	Item struct {
		Type string `json:"item_type"`
		Text string `json:"text"`
	} `json:"item"`
}

func (codexParser) ParseLine(line string) (Event, bool) {
	var l codexLine
	if err := json.Unmarshal([]byte(line), &l); err != nil {
		return Event{}, false
	}
	if l.Type != "item.completed" || l.Item.Text == "" {
		return Event{}, false
	}
	if l.Item.Type == "agent_message" {
		// The final agent message supersedes reasoning fragments.
		return Event{Kind: KindResult, Text: l.Item.Text}, true
	}
	return Event{Kind: KindText, Text: l.Item.Text}, true
}
