// Package capability holds the static per-agent feature table.
// The table is seeded at init and read-only for the process lifetime; adding
// an agent is a code change, not a runtime API.
package capability

import (
	"github.com/joss/cockpit/internal/session"
)

// Flag names one of the independent capability booleans.
type Flag string

const (
	FlagResume           Flag = "resume"
	FlagReadOnlyMode     Flag = "read_only_mode"
	FlagStructuredOutput Flag = "structured_output"
	FlagSessionID        Flag = "session_id"
	FlagImageInput       Flag = "image_input"
	FlagSlashCommands    Flag = "slash_commands"
	FlagSessionDiscovery Flag = "session_discovery"
	FlagCostTracking     Flag = "cost_tracking"
	FlagUsageStats       Flag = "usage_stats"
	FlagBatchMode        Flag = "batch_mode"
	FlagStreaming        Flag = "streaming"
	FlagResultEvents     Flag = "result_events"
)

// Flags lists every capability flag in display order.
var Flags = []Flag{
	FlagResume, FlagReadOnlyMode, FlagStructuredOutput, FlagSessionID,
	FlagImageInput, FlagSlashCommands, FlagSessionDiscovery, FlagCostTracking,
	FlagUsageStats, FlagBatchMode, FlagStreaming, FlagResultEvents,
}

// Profile declares which optional features an agent integration supports.
// The zero value is the all-false fallback for unknown agents.
type Profile struct {
	Resume           bool `json:"resume"`
	ReadOnlyMode     bool `json:"readOnlyMode"`
	StructuredOutput bool `json:"structuredOutput"`
	SessionID        bool `json:"sessionId"`
	ImageInput       bool `json:"imageInput"`
	SlashCommands    bool `json:"slashCommands"`
	SessionDiscovery bool `json:"sessionDiscovery"`
	CostTracking     bool `json:"costTracking"`
	UsageStats       bool `json:"usageStats"`
	BatchMode        bool `json:"batchMode"`
	Streaming        bool `json:"streaming"`
	ResultEvents     bool `json:"resultEvents"`
}

// Flag reads a single capability by name. Unknown flags are false.
func (p Profile) Flag(f Flag) bool {
	switch f {
	case FlagResume:
		return p.Resume
	case FlagReadOnlyMode:
		return p.ReadOnlyMode
	case FlagStructuredOutput:
		return p.StructuredOutput
	case FlagSessionID:
		return p.SessionID
	case FlagImageInput:
		return p.ImageInput
	case FlagSlashCommands:
		return p.SlashCommands
	case FlagSessionDiscovery:
		return p.SessionDiscovery
	case FlagCostTracking:
		return p.CostTracking
	case FlagUsageStats:
		return p.UsageStats
	case FlagBatchMode:
		return p.BatchMode
	case FlagStreaming:
		return p.Streaming
	case FlagResultEvents:
		return p.ResultEvents
	}
	return false
}

// profiles is the static capability table. Shell sessions intentionally map
// to the all-false profile.
var profiles = map[session.AgentType]Profile{
	session.AgentClaude: {
		Resume:           true,
		ReadOnlyMode:     true,
		StructuredOutput: true,
		SessionID:        true,
		ImageInput:       true,
		SlashCommands:    true,
		SessionDiscovery: true,
		CostTracking:     true,
		UsageStats:       true,
		BatchMode:        true,
		Streaming:        true,
		ResultEvents:     true,
	},
	session.AgentCodex: {
		Resume:           true,
		StructuredOutput: true,
		SessionID:        true,
		ImageInput:       true,
		SessionDiscovery: true,
		UsageStats:       true,
		BatchMode:        true,
		Streaming:        true,
		ResultEvents:     true,
	},
	session.AgentGemini: {
		StructuredOutput: true,
		SlashCommands:    true,
		UsageStats:       true,
		BatchMode:        true,
		Streaming:        true,
	},
	session.AgentOpenCode: {
		Resume:           true,
		StructuredOutput: true,
		SessionID:        true,
		SlashCommands:    true,
		SessionDiscovery: true,
		CostTracking:     true,
		UsageStats:       true,
		BatchMode:        true,
		Streaming:        true,
		ResultEvents:     true,
	},
	session.AgentAider: {
		Resume:        true,
		ReadOnlyMode:  true,
		SlashCommands: true,
		CostTracking:  true,
		BatchMode:     true,
	},
}

// Known lists the agent types present in the table, in stable order.
func Known() []session.AgentType {
	return []session.AgentType{
		session.AgentClaude,
		session.AgentCodex,
		session.AgentGemini,
		session.AgentOpenCode,
		session.AgentAider,
	}
}

// Get returns the capability profile for an agent. Unknown agents resolve to
// the all-false profile. The return is a value copy; mutating it never
// affects the table.
func Get(agent session.AgentType) Profile {
	return profiles[agent]
}

// Has reports a single capability for an agent.
func Has(agent session.AgentType, f Flag) bool {
	return Get(agent).Flag(f)
}
