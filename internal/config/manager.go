package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	logx "systemdwake/pkg/logx"
)

// DefaultPath is $XDG_CONFIG_HOME/systemd-wake/config.yaml (or the
// platform equivalent). It returns "" when no config dir can be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return ""
	}
	return filepath.Join(dir, "systemd-wake", "config.yaml")
}

type ConfigManager struct {
	path string
	// optional allows a missing file (defaults are used instead).
	optional bool

	mu  sync.RWMutex
	cfg *Config

	log logx.Logger
}

func NewConfigManager(path string) *ConfigManager {
	return &ConfigManager{path: path}
}

// NewOptionalConfigManager is like NewConfigManager but Load falls back to
// Default() when the file does not exist.
func NewOptionalConfigManager(path string) *ConfigManager {
	return &ConfigManager{path: path, optional: true}
}

func (m *ConfigManager) SetLogger(log logx.Logger) { m.log = log }

func (m *ConfigManager) Path() string { return m.path }

func (m *ConfigManager) Parse() (*Config, error) {
	b, err := os.ReadFile(m.path)
	if err != nil {
		return nil, err
	}
	return parseBytes(m.path, b)
}

func parseBytes(path string, b []byte) (*Config, error) {
	jb := b
	if isYAML(path) {
		var err error
		if jb, err = yamlToJSON(path, b); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if len(bytes.TrimSpace(jb)) == 0 || bytes.Equal(bytes.TrimSpace(jb), []byte("null")) {
		return &cfg, nil
	}
	dec := json.NewDecoder(bytes.NewReader(jb))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	// reject trailing tokens (e.g. concatenated JSON)
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("%s: invalid config: trailing data", path)
		}
		return nil, err
	}
	return &cfg, nil
}

func (m *ConfigManager) Commit(cfg *Config) {
	m.mu.Lock()
	m.cfg = cfg
	m.mu.Unlock()
}

// Load parses, defaults and validates the file, then commits it.
func (m *ConfigManager) Load() (*Config, error) {
	var cfg *Config
	if strings.TrimSpace(m.path) == "" {
		if !m.optional {
			return nil, errors.New("config path is required")
		}
		cfg = Default()
	} else {
		parsed, err := m.Parse()
		switch {
		case err == nil:
			cfg = parsed
		case m.optional && errors.Is(err, fs.ErrNotExist):
			if !m.log.IsZero() {
				m.log.Debug("config file not found; using defaults", logx.String("path", m.path))
			}
			cfg = Default()
		default:
			return nil, err
		}
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	m.Commit(cfg)
	return cfg, nil
}

func (m *ConfigManager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}
