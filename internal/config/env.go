// Package config provides centralized configuration management.
// All COCKPIT_* environment reads go through here instead of scattered
// os.Getenv calls.
package config

import (
	"os"
	"path/filepath"
	"sync"
)

// CockpitEnv holds all cockpit environment variables.
type CockpitEnv struct {
	// SessionID is the current session identifier (COCKPIT_SESSION_ID)
	SessionID string

	// DefaultAgent is the agent used when none is specified (COCKPIT_AGENT)
	DefaultAgent string

	// DataDir overrides the history/data directory (COCKPIT_DATA_DIR)
	DataDir string

	// RemoteHost is the default remote execution host (COCKPIT_REMOTE_HOST)
	RemoteHost string

	// RemoteUser is the default remote execution user (COCKPIT_REMOTE_USER)
	RemoteUser string

	// NoColor disables colored output (COCKPIT_NO_COLOR)
	NoColor bool
}

var (
	env     *CockpitEnv
	envOnce sync.Once
)

// Env returns the singleton environment configuration.
// Thread-safe, loads once on first call.
func Env() *CockpitEnv {
	envOnce.Do(func() {
		env = &CockpitEnv{
			SessionID:    os.Getenv("COCKPIT_SESSION_ID"),
			DefaultAgent: getEnvDefault("COCKPIT_AGENT", "claude"),
			DataDir:      os.Getenv("COCKPIT_DATA_DIR"),
			RemoteHost:   os.Getenv("COCKPIT_REMOTE_HOST"),
			RemoteUser:   os.Getenv("COCKPIT_REMOTE_USER"),
			NoColor:      os.Getenv("COCKPIT_NO_COLOR") == "1",
		}
	})
	return env
}

// ResetEnv resets the cached environment (for testing).
func ResetEnv() {
	envOnce = sync.Once{}
	env = nil
}

func getEnvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Paths holds standard cockpit directory paths.
type Paths struct {
	// Home is the cockpit home directory (~/.cockpit)
	Home string

	// Data is the data directory (~/.cockpit/data)
	Data string
}

var (
	paths     *Paths
	pathsOnce sync.Once
)

// GetPaths returns the singleton paths configuration.
// COCKPIT_DATA_DIR overrides the data directory.
func GetPaths() *Paths {
	pathsOnce.Do(func() {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		cockpitHome := filepath.Join(home, ".cockpit")

		data := filepath.Join(cockpitHome, "data")
		if dir := Env().DataDir; dir != "" {
			data = dir
		}

		paths = &Paths{
			Home: cockpitHome,
			Data: data,
		}
	})
	return paths
}

// EnsureDir creates a directory if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
