package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/aerogrid/netmap/log"
)

const (
	StateFileName = "state.json"
	maxRecent     = 10
)

// State is what netmap remembers between runs.
type State struct {
	// GroupMode is the grouping the node list was last left in.
	GroupMode string `json:"group_mode,omitempty"`
	// RecentScenarios lists opened scenario files, most recent first.
	RecentScenarios []string `json:"recent_scenarios,omitempty"`
}

// AddRecent moves path to the front of the recent list.
func (s *State) AddRecent(path string) {
	if path == "" {
		return
	}
	s.RecentScenarios = slices.DeleteFunc(s.RecentScenarios, func(p string) bool { return p == path })
	s.RecentScenarios = append([]string{path}, s.RecentScenarios...)
	if len(s.RecentScenarios) > maxRecent {
		s.RecentScenarios = s.RecentScenarios[:maxRecent]
	}
}

func statePath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, StateFileName), nil
}

// LoadState never fails: a missing or broken file yields an empty State.
func LoadState() *State {
	path, err := statePath()
	if err != nil {
		log.ErrorLog.Printf("failed to get config directory: %v", err)
		return &State{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.WarningLog.Printf("failed to read state file: %v", err)
		}
		return &State{}
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		log.WarningLog.Printf("failed to parse state file: %v", err)
		return &State{}
	}
	return &s
}

// SaveState writes s to the config dir.
func SaveState(s *State) error {
	path, err := statePath()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
