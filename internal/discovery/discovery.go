// Package discovery scans the well-known session storage locations of agent
// CLIs so previous sessions can be offered for resume. Only agents whose
// capability profile declares discoverable session storage are scanned.
package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/joss/cockpit/internal/capability"
	"github.com/joss/cockpit/internal/logging"
	"github.com/joss/cockpit/internal/session"
)

// storagePatterns maps an agent to session-file globs relative to the scan
// root (normally the user's home directory).
var storagePatterns = map[session.AgentType][]string{
	session.AgentClaude:   {".claude/projects/**/*.jsonl"},
	session.AgentCodex:    {".codex/sessions/**/*.jsonl"},
	session.AgentOpenCode: {".local/share/opencode/storage/session/**/*.json"},
}

// Discovered is one session file found on disk.
type Discovered struct {
	Agent   session.AgentType `json:"agent"`
	Path    string            `json:"path"`
	ModTime time.Time         `json:"modTime"`
	Size    int64             `json:"size"`
}

// Scanner locates agent session files under a root directory.
type Scanner struct {
	root string
	log  *logging.Logger
}

// NewScanner creates a scanner rooted at dir; "" means the home directory.
func NewScanner(dir string) *Scanner {
	if dir == "" {
		dir, _ = os.UserHomeDir()
	}
	return &Scanner{root: dir, log: logging.New("discovery")}
}

// Scan returns session files for every discovery-capable agent, newest first.
func (s *Scanner) Scan() []Discovered {
	var out []Discovered
	for agent := range storagePatterns {
		found, err := s.ScanAgent(agent)
		if err != nil {
			s.log.Warn("scan_failed", map[string]any{"agent": string(agent)}, err)
			continue
		}
		out = append(out, found...)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ModTime.After(out[j].ModTime)
	})
	return out
}

// ScanAgent returns session files for one agent, newest first. Agents
// without discoverable session storage yield an error.
func (s *Scanner) ScanAgent(agent session.AgentType) ([]Discovered, error) {
	if !capability.Has(agent, capability.FlagSessionDiscovery) {
		return nil, fmt.Errorf("agent %s has no discoverable session storage", agent)
	}
	patterns, ok := storagePatterns[agent]
	if !ok {
		return nil, fmt.Errorf("no storage location known for agent %s", agent)
	}

	var out []Discovered
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(filepath.Join(s.root, pattern))
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", pattern, err)
		}
		for _, path := range matches {
			info, err := os.Stat(path)
			if err != nil || info.IsDir() {
				continue
			}
			out = append(out, Discovered{
				Agent:   agent,
				Path:    path,
				ModTime: info.ModTime(),
				Size:    info.Size(),
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ModTime.After(out[j].ModTime)
	})
	return out, nil
}
