package storage

import (
	"context"
	"fmt"
	"strings"

	logx "systemdwake/pkg/logx"
)

// Store is the audit history backend.
type Store interface {
	AppendAudit(ctx context.Context, e AuditEntry) error
	// RecentAudit returns up to limit entries, newest first.
	RecentAudit(ctx context.Context, limit int) ([]AuditEntry, error)
	Close() error
}

var openers = map[string]func(Config, logx.Logger) (Store, error){
	"file":    openFile,
	"sqlite":  openSQLite,
	"sqlite3": openSQLite,
}

// Open returns the store selected by cfg.Driver, or (nil, nil) when the
// driver is empty or "none".
func Open(cfg Config, log logx.Logger) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" || driver == "none" {
		return nil, nil
	}
	open, ok := openers[driver]
	if !ok {
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.Driver)
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	st, err := open(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s %s: %w", driver, cfg.Path, err)
	}
	log.Debug("audit store opened", logx.String("driver", driver), logx.String("path", cfg.Path))
	return st, nil
}
