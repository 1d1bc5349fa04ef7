package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

func TestLoadYAML(t *testing.T) {
	t.Parallel()
	p := writeFile(t, "config.yaml", `
systemd:
  scope: system
  launcher: /usr/local/bin/systemd-wake
  backend: dbus
timezone: UTC
logging:
  level: debug
  console: true
storage:
  driver: sqlite
  path: /tmp/audit.db
  busy_timeout: 2s
`)
	cfg, err := NewConfigManager(p).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Systemd.Scope != "system" || cfg.Systemd.Backend != "dbus" {
		t.Fatalf("systemd = %+v", cfg.Systemd)
	}
	if cfg.Systemd.RunTool != "systemd-run" || cfg.Systemd.StopTool != "systemctl" {
		t.Fatalf("defaults not applied: %+v", cfg.Systemd)
	}
	if cfg.Storage == nil || cfg.Storage.Driver != "sqlite" {
		t.Fatalf("storage = %+v", cfg.Storage)
	}
	loc, err := cfg.Location()
	if err != nil || loc.String() != "UTC" {
		t.Fatalf("Location = %v, %v", loc, err)
	}
}

func TestLoadJSONRejectsUnknownFields(t *testing.T) {
	t.Parallel()
	p := writeFile(t, "config.json", `{"systemd":{"scope":"user"},"notify":{}}`)
	if _, err := NewConfigManager(p).Load(); err == nil || !strings.Contains(err.Error(), "unknown field") {
		t.Fatalf("Load = %v, want unknown field error", err)
	}
}

func TestLoadRejectsTrailingData(t *testing.T) {
	t.Parallel()
	p := writeFile(t, "config.json", `{"logging":{"level":"info"}} {}`)
	if _, err := NewConfigManager(p).Load(); err == nil {
		t.Fatal("expected trailing data error")
	}
}

func TestLoadValidates(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		body string
	}{
		{name: "scope", body: "systemd:\n  scope: session\n"},
		{name: "backend", body: "systemd:\n  backend: grpc\n"},
		{name: "timezone", body: "timezone: Mars/Olympus\n"},
		{name: "driver", body: "storage:\n  driver: mongo\n"},
		{name: "busy timeout", body: "storage:\n  driver: sqlite\n  busy_timeout: soon\n"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			p := writeFile(t, "config.yaml", tt.body)
			if _, err := NewConfigManager(p).Load(); err == nil {
				t.Fatalf("expected validation error for %q", tt.body)
			}
		})
	}
}

func TestOptionalMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()
	p := filepath.Join(t.TempDir(), "missing.yaml")

	if _, err := NewConfigManager(p).Load(); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("required Load = %v, want ErrNotExist", err)
	}

	m := NewOptionalConfigManager(p)
	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("optional Load: %v", err)
	}
	if cfg.Systemd.Scope != "user" || cfg.Systemd.Launcher != "systemd-wake" {
		t.Fatalf("defaults = %+v", cfg.Systemd)
	}
	if m.Get() != cfg {
		t.Fatal("Get should return the committed config")
	}
}

func TestEmptyYAMLIsDefaults(t *testing.T) {
	t.Parallel()
	p := writeFile(t, "config.yml", "")
	cfg, err := NewConfigManager(p).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Systemd.Backend != "exec" {
		t.Fatalf("Backend = %q, want exec", cfg.Systemd.Backend)
	}
}

func TestYAMLToJSONRejects(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		body string
		want string
	}{
		{"two documents", "timezone: UTC\n---\ntimezone: Local\n", "single document"},
		{"non-string key", "systemd:\n  1: x\n", "systemd: key 1 is not a string"},
		{"bad syntax", "systemd: [\n", "yaml:"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := yamlToJSON("c.yaml", []byte(tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("yamlToJSON err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestBusyTimeoutOr(t *testing.T) {
	t.Parallel()
	var nilStorage *StorageConfig
	if d, err := nilStorage.BusyTimeoutOr(time.Second); err != nil || d != time.Second {
		t.Fatalf("nil = (%v, %v)", d, err)
	}
	if d, err := (&StorageConfig{BusyTimeout: "500ms"}).BusyTimeoutOr(time.Second); err != nil || d != 500*time.Millisecond {
		t.Fatalf("500ms = (%v, %v)", d, err)
	}
	if _, err := (&StorageConfig{BusyTimeout: "-1s"}).BusyTimeoutOr(time.Second); err == nil {
		t.Fatal("negative busy_timeout accepted")
	}
}
