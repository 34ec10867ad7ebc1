package agentout

import (
	"encoding/json"
	"strings"

	"github.com/joss/cockpit/internal/session"
)

// IsStructured reports whether raw output should be treated as JSON Lines.
// Classification looks only at the first line with non-whitespace content:
// if it starts with '{' the whole buffer is JSONL, otherwise it is plain text.
func IsStructured(raw string) bool {
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		return strings.HasPrefix(trimmed, "{")
	}
	return false
}

// Extract resolves the display text for a raw-output snapshot using the
// generic field heuristic only, with no agent-specific parser lookup.
//
// The extractor is stateless: every call re-scans the full buffer. That is
// deliberate — result-vs-text precedence depends on seeing the whole buffer,
// so this must not be converted to incremental parsing. Known O(n) per call.
func Extract(raw string) string {
	return extract(raw, nil)
}

// ExtractForAgent resolves the display text using the parser registered for
// the agent, falling back to the generic heuristic when no parser is
// registered or the content is not JSONL-shaped.
func ExtractForAgent(raw string, agent session.AgentType) string {
	if p, ok := LookupParser(agent); ok {
		return extract(raw, p)
	}
	return extract(raw, nil)
}

func extract(raw string, parser LineParser) string {
	// Plain text passes through untouched: no trimming, no line processing.
	if !IsStructured(raw) {
		return raw
	}

	var acc []string
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		var ev Event
		var ok bool
		if parser != nil {
			ev, ok = parseLineSafe(parser, line)
		} else {
			ev, ok = parseGeneric(line)
		}
		if !ok {
			continue
		}

		// A result always wins and short-circuits the scan.
		if ev.Kind == KindResult {
			return ev.Text
		}
		acc = append(acc, ev.Text)
	}
	return strings.Join(acc, "\n")
}

// parseLineSafe absorbs parser panics as "skip this line".
func parseLineSafe(p LineParser, line string) (ev Event, ok bool) {
	defer func() {
		if recover() != nil {
			ev, ok = Event{}, false
		}
	}()
	return p.ParseLine(line)
}

// parseGeneric extracts text from an arbitrary agent's JSON line using a
// fixed field priority: result, text, part.text, message.content. The first
// present field wins; a non-string value at a matching path is treated as
// absent. This order is frozen — new schemas register a parser instead of
// extending it.
func parseGeneric(line string) (Event, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(line), &obj); err != nil {
		return Event{}, false
	}

	if s, ok := stringField(obj, "result"); ok {
		return Event{Kind: KindResult, Text: s}, true
	}
	if s, ok := stringField(obj, "text"); ok {
		return Event{Kind: KindText, Text: s}, true
	}
	if s, ok := nestedStringField(obj, "part", "text"); ok {
		return Event{Kind: KindText, Text: s}, true
	}
	if s, ok := nestedStringField(obj, "message", "content"); ok {
		return Event{Kind: KindText, Text: s}, true
	}
	return Event{}, false
}

func stringField(obj map[string]any, key string) (string, bool) {
	v, present := obj[key]
	if !present {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func nestedStringField(obj map[string]any, outer, inner string) (string, bool) {
	v, present := obj[outer]
	if !present {
		return "", false
	}
	m, ok := v.(map[string]any)
	if !ok {
		return "", false
	}
	return stringField(m, inner)
}
