package wake

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNewTimerNameAccepts(t *testing.T) {
	t.Parallel()
	tests := []string{
		"beep-job-1",
		"a",
		"my_special.unit-name-123",
		"ALLCAPS",
		"backup.daily",
		"job.services",
		"timer",
		strings.Repeat("x", MaxNameLength),
	}
	for _, raw := range tests {
		raw := raw
		t.Run(raw[:min(len(raw), 20)], func(t *testing.T) {
			n, err := NewTimerName(raw)
			if err != nil {
				t.Fatalf("NewTimerName(%q) error: %v", raw, err)
			}
			if n.String() != raw {
				t.Fatalf("String() = %q, want %q", n.String(), raw)
			}
			if n.Timer() != raw+".timer" {
				t.Fatalf("Timer() = %q", n.Timer())
			}
		})
	}
}

func TestNewTimerNameRejects(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "slash", raw: "a/b"},
		{name: "space", raw: "beep job"},
		{name: "bang", raw: "beep!"},
		{name: "tab", raw: "beep\tjob"},
		{name: "newline", raw: "beep\n"},
		{name: "nul", raw: "beep\x00"},
		{name: "non-ascii", raw: "bëep"},
		{name: "at sign", raw: "beep@1"},
		{name: "too long", raw: strings.Repeat("x", MaxNameLength+1)},
		{name: "service suffix", raw: "beep.service"},
		{name: "timer suffix", raw: "job.timer"},
		{name: "scope suffix", raw: "a.b.scope"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			n, err := NewTimerName(tt.raw)
			if err == nil {
				t.Fatalf("NewTimerName(%q) = %q, want error", tt.raw, n)
			}
			if !errors.Is(err, ErrInvalidName) {
				t.Fatalf("error %v does not wrap ErrInvalidName", err)
			}
			var ne *NameError
			if !errors.As(err, &ne) || ne.Reason == "" {
				t.Fatalf("expected *NameError with reason, got %T %v", err, err)
			}
			if !n.IsZero() {
				t.Fatalf("expected zero TimerName on error")
			}
		})
	}
}

func TestMaxNameLengthFitsServiceSuffix(t *testing.T) {
	n := MustTimerName(strings.Repeat("x", MaxNameLength))
	if got := len(n.Service()); got != 255 {
		t.Fatalf("len(Service()) = %d, want 255", got)
	}
}

// systemd-run appends ".service" to --unit and swaps it for ".timer"; the stop
// target must be that timer.
func TestDottedNameRegisterAndStopAgree(t *testing.T) {
	t.Parallel()
	s := New(Config{Invoker: newFakeSystemd()})
	n := MustTimerName("backup.daily")
	reg, err := s.RegisterArgs(time.Unix(0, 0), n, Command{Path: "true"})
	if err != nil {
		t.Fatalf("RegisterArgs: %v", err)
	}
	unit := ""
	for _, a := range reg {
		if v, ok := strings.CutPrefix(a, "--unit="); ok {
			unit = v
		}
	}
	stop := s.DeregisterArgs(n)
	if got, want := stop[len(stop)-1], unit+".timer"; got != want {
		t.Fatalf("stop target = %q, want %q", got, want)
	}
}
