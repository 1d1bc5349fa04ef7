//go:build linux

package wake

import (
	"context"
	"errors"
	"fmt"
	"testing"

	godbus "github.com/godbus/dbus/v5"
)

func TestIsNoSuchUnitErr(t *testing.T) {
	t.Parallel()
	noSuchUnit := godbus.Error{Name: dbusNoSuchUnit, Body: []any{"Unit beep.timer not loaded."}}
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"dbus error value", noSuchUnit, true},
		{"dbus error pointer", godbus.NewError(dbusNoSuchUnit, []any{"Unit x.timer not loaded."}), true},
		{"wrapped", fmt.Errorf("stop: %w", noSuchUnit), true},
		{"name only in body text", errors.New("org.freedesktop.systemd1.NoSuchUnit: gone"), true},
		{"access denied", godbus.Error{Name: "org.freedesktop.DBus.Error.AccessDenied", Body: []any{"denied"}}, false},
		{"unrelated", errors.New("connection reset"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isNoSuchUnitErr(tt.err); got != tt.want {
				t.Fatalf("isNoSuchUnitErr(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestStopJobResult(t *testing.T) {
	t.Parallel()
	if err := stopJobResult("beep.timer", "done"); err != nil {
		t.Fatalf("done: %v", err)
	}
	for _, result := range []string{"failed", "canceled", "timeout", "dependency"} {
		err := stopJobResult("beep.timer", result)
		if !errors.Is(err, ErrRejected) {
			t.Fatalf("%s: err = %v, want ErrRejected", result, err)
		}
		var ie *InvocationError
		if !errors.As(err, &ie) || ie.Op != "deregister" || ie.Args[1] != "beep.timer" {
			t.Fatalf("%s: err = %#v", result, err)
		}
	}
}

func TestDBusCancellerClosed(t *testing.T) {
	t.Parallel()
	c := &DBusCanceller{}
	err := c.Deregister(context.Background(), MustTimerName("beep"))
	if !errors.Is(err, ErrSpawnFailed) {
		t.Fatalf("closed canceller err = %v, want ErrSpawnFailed", err)
	}
	if err := c.Deregister(context.Background(), TimerName{}); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("zero name err = %v, want ErrInvalidName", err)
	}
}

func TestAwaitStopContextCancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := awaitStop(ctx, "beep.timer", make(chan string))
	var ie *InvocationError
	if !errors.As(err, &ie) || ie.Op != "deregister" {
		t.Fatalf("err = %#v, want *InvocationError for deregister", err)
	}
	if !errors.Is(err, ErrRejected) || !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want ErrRejected wrapping context.Canceled", err)
	}

	done := make(chan string, 1)
	done <- "done"
	if err := awaitStop(context.Background(), "beep.timer", done); err != nil {
		t.Fatalf("done result: %v", err)
	}
}
