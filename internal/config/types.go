package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the wakectl configuration file.
//
// Example (YAML):
//
//	systemd:
//	  scope: user
//	  launcher: /usr/local/bin/systemd-wake
//	timezone: Europe/Berlin
//	logging: { level: debug, console: true }
//	storage: { driver: sqlite, path: ~/.local/state/systemd-wake/audit.db }
type Config struct {
	Systemd SystemdConfig `json:"systemd"`
	// Timezone is used for wall-clock (HH:MM) and cron wake expressions.
	// Empty or "Local" means the host zone.
	Timezone string         `json:"timezone,omitempty"`
	Logging  LoggingConfig  `json:"logging"`
	Storage  *StorageConfig `json:"storage,omitempty"`
}

// SystemdConfig selects the systemd manager and the tools used to talk to it.
//
// Defaults (when fields are omitted/zero):
//   - scope: "user"
//   - run_tool: "systemd-run"
//   - stop_tool: "systemctl"
//   - launcher: "systemd-wake"
//   - backend: "exec"
type SystemdConfig struct {
	Scope    string `json:"scope,omitempty"`
	RunTool  string `json:"run_tool,omitempty"`
	StopTool string `json:"stop_tool,omitempty"`
	Launcher string `json:"launcher,omitempty"`
	// Backend picks how timers are stopped: "exec" spawns stop_tool,
	// "dbus" talks to the manager over D-Bus.
	Backend     string `json:"backend,omitempty"`
	Description string `json:"description,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
	Journal bool        `json:"journal,omitempty"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// StorageConfig controls the optional audit history.
//
// Example:
//
//	"storage": { "driver": "file", "path": "./wake_audit" }
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Systemd: SystemdConfig{
			Scope:    "user",
			RunTool:  "systemd-run",
			StopTool: "systemctl",
			Launcher: "systemd-wake",
			Backend:  "exec",
		},
		Logging: LoggingConfig{Level: "warn", Console: true},
	}
}

// ApplyDefaults fills zero fields with Default values.
func (c *Config) ApplyDefaults() {
	d := Default()
	if strings.TrimSpace(c.Systemd.Scope) == "" {
		c.Systemd.Scope = d.Systemd.Scope
	}
	if strings.TrimSpace(c.Systemd.RunTool) == "" {
		c.Systemd.RunTool = d.Systemd.RunTool
	}
	if strings.TrimSpace(c.Systemd.StopTool) == "" {
		c.Systemd.StopTool = d.Systemd.StopTool
	}
	if strings.TrimSpace(c.Systemd.Launcher) == "" {
		c.Systemd.Launcher = d.Systemd.Launcher
	}
	if strings.TrimSpace(c.Systemd.Backend) == "" {
		c.Systemd.Backend = d.Systemd.Backend
	}
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = d.Logging.Level
	}
}

// Validate checks enums, the timezone and durations.
func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Systemd.Scope)) {
	case "", "user", "system":
	default:
		return fmt.Errorf("systemd.scope: must be user or system, got %q", c.Systemd.Scope)
	}
	switch strings.ToLower(strings.TrimSpace(c.Systemd.Backend)) {
	case "", "exec", "dbus":
	default:
		return fmt.Errorf("systemd.backend: must be exec or dbus, got %q", c.Systemd.Backend)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Level)) {
	case "", "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unknown level %q", c.Logging.Level)
	}
	if c.Storage != nil {
		switch strings.ToLower(strings.TrimSpace(c.Storage.Driver)) {
		case "", "none", "file", "sqlite", "sqlite3":
		default:
			return fmt.Errorf("storage.driver: unknown driver %q", c.Storage.Driver)
		}
		if _, err := c.Storage.BusyTimeoutOr(0); err != nil {
			return err
		}
	}
	return nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.Timezone)
	if tz == "" || strings.EqualFold(tz, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("timezone: %w", err)
	}
	return loc, nil
}
