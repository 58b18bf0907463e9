// Package config loads the board configuration from the user's config
// directory.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	xdgAppName = "choresheet"
	configFile = "config.json"

	// EnvConfigDir overrides the config directory
	EnvConfigDir = "CHORESHEET_CONFIG"
)

// Backends
const (
	BackendSheets = "sheets"
	BackendSQLite = "sqlite"
)

// Config describes where task rows live and how the board talks outward
type Config struct {
	Backend         string `json:"backend"`
	SpreadsheetID   string `json:"spreadsheet_id,omitempty"`
	TaskWorksheet   string `json:"task_worksheet"`
	LogWorksheet    string `json:"log_worksheet"`
	CredentialsPath string `json:"credentials_path,omitempty"`
	Timezone        string `json:"timezone,omitempty"` // reference zone; empty = local
	Category        string `json:"category,omitempty"`
	SlackWebhook    string `json:"slack_webhook,omitempty"`
	DiscordWebhook  string `json:"discord_webhook,omitempty"`
	DBPath          string `json:"db_path,omitempty"` // sqlite backend
}

// Dir returns the config directory, honoring the env override
func Dir() (string, error) {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", xdgAppName), nil
}

// Load reads the config file, falling back to defaults when it is absent
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	f, err := os.Open(filepath.Join(dir, configFile))
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else {
		defer f.Close()
		if err := json.NewDecoder(f).Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config: %w", err)
		}
	}

	cfg.applyDefaults(dir)
	return cfg, cfg.Validate()
}

// Save writes the config file, creating the directory if needed
func Save(cfg *Config) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(dir, configFile), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file for writing: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	return encoder.Encode(cfg)
}

func (c *Config) applyDefaults(dir string) {
	if c.Backend == "" {
		c.Backend = BackendSQLite
	}
	if c.TaskWorksheet == "" {
		c.TaskWorksheet = "Tasks"
	}
	if c.LogWorksheet == "" {
		c.LogWorksheet = "Log"
	}
	if c.Category == "" {
		c.Category = "Unknown"
	}
	if c.DBPath == "" {
		c.DBPath = filepath.Join(dir, "tasks.db")
	}
}

// Validate checks that the selected backend has what it needs
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSQLite:
		return nil
	case BackendSheets:
		if c.SpreadsheetID == "" {
			return fmt.Errorf("sheets backend requires spreadsheet_id")
		}
		if c.CredentialsPath == "" {
			return fmt.Errorf("sheets backend requires credentials_path")
		}
		return nil
	default:
		return fmt.Errorf("unknown backend %q (want %q or %q)", c.Backend, BackendSheets, BackendSQLite)
	}
}

// Location resolves the reference zone used for recurrence anchoring and
// completion stamps
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
