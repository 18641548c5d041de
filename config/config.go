package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aerogrid/netmap/log"
)

const (
	ConfigFileName   = "config.json"
	EventLogFileName = "events.db"
	defaultGroupMode = "layer"
)

// GetConfigDir returns the path to the application's configuration directory.
// Uses XDG-compliant ~/.config/netmap/. On first run, migrates the legacy
// ~/.netmap directory.
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config home directory: %w", err)
	}
	newDir := filepath.Join(homeDir, ".config", "netmap")

	// Already exists, fast path
	if _, err := os.Stat(newDir); err == nil {
		return newDir, nil
	}

	oldDir := filepath.Join(homeDir, ".netmap")
	if _, err := os.Stat(oldDir); err == nil {
		if mkErr := os.MkdirAll(filepath.Dir(newDir), 0755); mkErr != nil {
			log.ErrorLog.Printf("failed to create %s: %v", filepath.Dir(newDir), mkErr)
			return oldDir, nil
		}
		if renameErr := os.Rename(oldDir, newDir); renameErr != nil {
			log.ErrorLog.Printf("failed to migrate %s to %s: %v", oldDir, newDir, renameErr)
			return oldDir, nil
		}
	}

	return newDir, nil
}

// Config represents the application configuration
type Config struct {
	// DefaultScenario is the scenario file opened when none is given on the
	// command line. Empty means the built-in scenario.
	DefaultScenario string `json:"default_scenario,omitempty"`
	// SidebarCollapsed starts the node list as a narrow rail.
	SidebarCollapsed bool `json:"sidebar_collapsed"`
	// GroupMode is the initial grouping of the node list ("layer" or "type").
	GroupMode string `json:"group_mode"`
	// WatchScenario reloads the scenario file when it changes on disk.
	WatchScenario bool `json:"watch_scenario"`
	// TelemetryEnabled controls whether crash reporting via Sentry is active.
	// Defaults to true when not set; a DSN must also be configured.
	TelemetryEnabled *bool `json:"telemetry_enabled,omitempty"`
	// EventLogEnabled controls the sqlite event log.
	// Defaults to true when not set.
	EventLogEnabled *bool `json:"event_log_enabled,omitempty"`

	// Tuning comes from config.toml only.
	Tuning Tuning `json:"-"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	trueVal := true
	return &Config{
		GroupMode:       defaultGroupMode,
		EventLogEnabled: &trueVal,
		Tuning:          DefaultTuning(),
	}
}

// IsTelemetryEnabled returns whether Sentry telemetry is enabled.
// Defaults to true when the field is not set.
func (c *Config) IsTelemetryEnabled() bool {
	if c.TelemetryEnabled == nil {
		return true
	}
	return *c.TelemetryEnabled
}

// IsEventLogEnabled returns whether the event log is enabled.
// Defaults to true when the field is not set.
func (c *Config) IsEventLogEnabled() bool {
	if c.EventLogEnabled == nil {
		return true
	}
	return *c.EventLogEnabled
}

// EventLogPath returns where the sqlite event log lives.
func EventLogPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, EventLogFileName), nil
}

// LoadConfig never fails: a missing or unreadable file yields defaults.
func LoadConfig() *Config {
	configDir, err := GetConfigDir()
	if err != nil {
		log.ErrorLog.Printf("failed to get config directory: %v", err)
		return DefaultConfig()
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Create and save default config if file doesn't exist
			defaultCfg := DefaultConfig()
			if saveErr := saveConfig(defaultCfg); saveErr != nil {
				log.WarningLog.Printf("failed to save default config: %v", saveErr)
			}
			applyTOML(defaultCfg)
			return defaultCfg
		}

		log.WarningLog.Printf("failed to get config file: %v", err)
		return DefaultConfig()
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		log.ErrorLog.Printf("failed to parse config file: %v", err)
		return DefaultConfig()
	}
	if config.GroupMode == "" {
		config.GroupMode = defaultGroupMode
	}

	applyTOML(config)
	return config
}

// applyTOML overlays config.toml. TOML is the authority for tuning.
func applyTOML(config *Config) {
	tomlResult, tomlErr := LoadTOMLConfig()
	if tomlErr != nil {
		log.WarningLog.Printf("failed to load TOML config: %v", tomlErr)
		return
	}
	if tomlResult == nil {
		return
	}
	config.Tuning = tomlResult.Tuning
	if tomlResult.TelemetryEnabled != nil {
		config.TelemetryEnabled = tomlResult.TelemetryEnabled
	}
	if tomlResult.EventLogEnabled != nil {
		config.EventLogEnabled = tomlResult.EventLogEnabled
	}
}

// saveConfig saves the configuration to disk
func saveConfig(config *Config) error {
	configDir, err := GetConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}

// SaveConfig exports the saveConfig function for use by other packages
func SaveConfig(config *Config) error {
	return saveConfig(config)
}
