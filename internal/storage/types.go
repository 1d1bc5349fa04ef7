package storage

import (
	"errors"
	"time"
)

var ErrDisabled = errors.New("storage disabled")

// Config configures storage.
//
// Driver values:
//   - "file": JSON Lines file (<path without ext>.audit.jsonl)
//   - "sqlite": SQLite database file
//
// If Driver is empty or "none", storage is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// AuditEntry records one register/deregister attempt.
// Keep it compact and schema-stable.
type AuditEntry struct {
	At       time.Time `json:"at"`
	Action   string    `json:"action"` // "register" | "deregister"
	Name     string    `json:"name"`
	Scope    string    `json:"scope,omitempty"`
	WakeAt   time.Time `json:"wake_at"`
	Schedule string    `json:"schedule,omitempty"` // encoded OnCalendar value
	Program  string    `json:"program,omitempty"`
	Args     []string  `json:"args,omitempty"`
	OK       bool      `json:"ok"`
	Error    string    `json:"error,omitempty"`
	TookMS   int64     `json:"took_ms"`
}
