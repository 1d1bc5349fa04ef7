package app

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"systemdwake/internal/config"
	"systemdwake/internal/storage"
	logx "systemdwake/pkg/logx"
	"systemdwake/pkg/wake"
)

// ---- Config ----

type Config = config.Config

type ConfigManager = config.ConfigManager

type StorageConfig = config.StorageConfig

var NewOptionalConfigManager = config.NewOptionalConfigManager

var DefaultConfigPath = config.DefaultPath

const defaultBusyTimeout = 2 * time.Second

func mapLoggingConfig(cfg *Config, levelOverride string) logx.Config {
	lc := logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
		Journal: cfg.Logging.Journal,
	}
	if strings.TrimSpace(levelOverride) != "" {
		lc.Level = levelOverride
	}
	return lc
}

func mapScope(raw string) wake.Scope {
	if strings.EqualFold(strings.TrimSpace(raw), string(wake.ScopeSystem)) {
		return wake.ScopeSystem
	}
	return wake.ScopeUser
}

// mapStorageConfig turns the storage section into a storage.Config. The
// second result is false when audit storage is off. A relative path is taken
// relative to baseDir (the config file's directory).
func mapStorageConfig(cfg *Config, baseDir string) (storage.Config, bool, error) {
	if cfg == nil || cfg.Storage == nil {
		return storage.Config{}, false, nil
	}
	sc := cfg.Storage

	var driver string
	switch d := strings.ToLower(strings.TrimSpace(sc.Driver)); d {
	case "", "none":
		return storage.Config{}, false, nil
	case "file":
		driver = d
	case "sqlite", "sqlite3":
		driver = "sqlite"
	default:
		return storage.Config{}, false, fmt.Errorf("storage.driver: unknown driver %q", sc.Driver)
	}

	path := expandHome(strings.TrimSpace(sc.Path))
	if path == "" {
		return storage.Config{}, false, fmt.Errorf("storage.path: required when storage.driver is %s", driver)
	}
	if !filepath.IsAbs(path) && baseDir != "" {
		path = filepath.Join(baseDir, path)
	}

	out := storage.Config{Driver: driver, Path: path}
	if driver == "sqlite" {
		busy, err := sc.BusyTimeoutOr(defaultBusyTimeout)
		if err != nil {
			return storage.Config{}, false, err
		}
		out.BusyTimeout = busy
	}
	return out, true, nil
}
