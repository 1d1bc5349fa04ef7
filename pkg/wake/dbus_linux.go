//go:build linux

package wake

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/coreos/go-systemd/v22/dbus"
	godbus "github.com/godbus/dbus/v5"
)

const dbusNoSuchUnit = "org.freedesktop.systemd1.NoSuchUnit"

// DBusCanceller stops timers through the systemd D-Bus API instead of
// spawning systemctl. A missing unit is reported by systemd as the
// structured NoSuchUnit error, so ErrNotFound does not depend on parsing
// localized text.
type DBusCanceller struct {
	mu   sync.Mutex
	conn *dbus.Conn
}

// NewDBusCanceller connects to the manager for scope.
func NewDBusCanceller(ctx context.Context, scope Scope) (*DBusCanceller, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var (
		conn *dbus.Conn
		err  error
	)
	if scope == ScopeSystem {
		conn, err = dbus.NewSystemConnectionContext(ctx)
	} else {
		conn, err = dbus.NewUserConnectionContext(ctx)
	}
	if err != nil {
		return nil, &InvocationError{Op: "deregister", Kind: ErrSpawnFailed, Program: "dbus", Err: fmt.Errorf("connect to systemd (%s): %w", scope, err)}
	}
	return &DBusCanceller{conn: conn}, nil
}

func (c *DBusCanceller) Deregister(ctx context.Context, name TimerName) error {
	if name.IsZero() {
		return &NameError{Reason: "must not be empty"}
	}
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return &InvocationError{Op: "deregister", Kind: ErrSpawnFailed, Program: "dbus", Err: fmt.Errorf("systemd connection is closed")}
	}

	unit := name.Timer()
	done := make(chan string, 1)
	if _, err := conn.StopUnitContext(ctx, unit, "replace", done); err != nil {
		kind := ErrRejected
		if isNoSuchUnitErr(err) {
			kind = ErrNotFound
		}
		return &InvocationError{Op: "deregister", Kind: kind, Program: "dbus", Args: stopCallArgs(unit), Err: err}
	}

	return awaitStop(ctx, unit, done)
}

// awaitStop waits for the stop job queued for unit. Giving up on ctx leaves
// the job queued in systemd; the outcome is unknown, reported as ErrRejected.
func awaitStop(ctx context.Context, unit string, done <-chan string) error {
	select {
	case result := <-done:
		return stopJobResult(unit, result)
	case <-ctx.Done():
		return &InvocationError{Op: "deregister", Kind: ErrRejected, Program: "dbus", Args: stopCallArgs(unit), Err: ctx.Err()}
	}
}

func stopCallArgs(unit string) []string { return []string{"StopUnit", unit, "replace"} }

// stopJobResult maps the result string of a finished stop job. Anything but
// "done" (canceled, timeout, failed, dependency, skipped) is a rejection.
func stopJobResult(unit, result string) error {
	if result == "done" {
		return nil
	}
	return &InvocationError{
		Op:      "deregister",
		Kind:    ErrRejected,
		Program: "dbus",
		Args:    stopCallArgs(unit),
		Stderr:  "stop job finished with result " + result,
	}
}

// Close closes the systemd connection.
func (c *DBusCanceller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	return nil
}

// isNoSuchUnitErr prefers the D-Bus error name; the message text of a
// godbus.Error is its body, which does not carry the name.
func isNoSuchUnitErr(err error) bool {
	if err == nil {
		return false
	}
	var de godbus.Error
	if errors.As(err, &de) && de.Name == dbusNoSuchUnit {
		return true
	}
	var dep *godbus.Error
	if errors.As(err, &dep) && dep != nil && dep.Name == dbusNoSuchUnit {
		return true
	}
	es := err.Error()
	return strings.Contains(es, "NoSuchUnit") || strings.Contains(es, "not loaded") || strings.Contains(es, "not-found")
}
