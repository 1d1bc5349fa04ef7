package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"systemdwake/pkg/wake"
)

type recordingInvoker struct {
	calls [][]string
	code  int
	err   error
}

func (r *recordingInvoker) Invoke(_ context.Context, program string, args []string) (wake.Result, error) {
	r.calls = append(r.calls, append([]string{program}, args...))
	if r.err != nil {
		return wake.Result{}, r.err
	}
	return wake.Result{ExitCode: r.code, Stderr: []byte(fmt.Sprintf("exit %d", r.code))}, nil
}

// These tests swap package-level hooks and must not run in parallel.
func setup(t *testing.T, inv *recordingInvoker, cfg string) string {
	t.Helper()
	prevInv, prevNow := newInvoker, nowFunc
	newInvoker = func() wake.Invoker { return inv }
	nowFunc = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 30, 0, time.UTC) }
	t.Cleanup(func() { newInvoker, nowFunc = prevInv, prevNow })

	dir := t.TempDir()
	p := filepath.Join(dir, "config.yaml")
	cfg = strings.ReplaceAll(cfg, "$DIR", dir)
	if err := os.WriteFile(p, []byte(cfg), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

const baseConfig = "timezone: UTC\nlogging:\n  level: error\n"

func TestRegisterPassesProgramArgsThrough(t *testing.T) {
	inv := &recordingInvoker{}
	cfg := setup(t, inv, baseConfig)

	out, err := run(t, "--config", cfg, "register", "--name", "alarm-1", "--at", "in:1m",
		"--", "mpv", "--volume", "50", "a b.ogg")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(inv.calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(inv.calls))
	}
	call := inv.calls[0]
	if call[0] != "systemd-run" || call[1] != "--user" {
		t.Fatalf("call = %q", call)
	}
	if !contains(call, "--on-calendar=2024-01-01 00:01:00 UTC") {
		t.Fatalf("missing schedule in %q", call)
	}
	tail := call[len(call)-5:]
	want := []string{"systemd-wake", "mpv", "--volume", "50", "a b.ogg"}
	for i := range want {
		if tail[i] != want[i] {
			t.Fatalf("tail = %q, want %q", tail, want)
		}
	}
	if !strings.Contains(out, "registered alarm-1") {
		t.Fatalf("output = %q", out)
	}
}

func TestRegisterDryRunDoesNotSpawn(t *testing.T) {
	inv := &recordingInvoker{}
	cfg := setup(t, inv, baseConfig)

	out, err := run(t, "--config", cfg, "--system", "register", "--dry-run",
		"--name", "job", "--at", "2024-06-01T10:00:00Z", "--unset", "DISPLAY", "true")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(inv.calls) != 0 {
		t.Fatalf("dry run spawned %q", inv.calls)
	}
	if !strings.HasPrefix(out, "systemd-run --unit=job ") || !strings.Contains(out, `"--on-calendar=2024-06-01 10:00:00 UTC"`) {
		t.Fatalf("output = %q", out)
	}
	if !strings.Contains(out, " --property=UnsetEnvironment=DISPLAY ") {
		t.Fatalf("output = %q, want UnsetEnvironment property", out)
	}
}

func TestExitCodes(t *testing.T) {
	cases := []struct {
		name string
		inv  *recordingInvoker
		args []string
		want int
	}{
		{"ok", &recordingInvoker{}, []string{"deregister", "--name", "x"}, ExitOK},
		{"not found", &recordingInvoker{code: 5}, []string{"deregister", "--name", "x"}, ExitNotFound},
		{"ignore missing", &recordingInvoker{code: 5}, []string{"deregister", "--name", "x", "--ignore-missing"}, ExitOK},
		{"rejected", &recordingInvoker{code: 1}, []string{"register", "--name", "x", "--at", "5m", "true"}, ExitRejected},
		{"spawn failed", &recordingInvoker{err: errors.New("exec: not found")}, []string{"deregister", "--name", "x"}, ExitSpawnFailed},
		{"bad name", &recordingInvoker{}, []string{"deregister", "--name", "a b"}, ExitUsage},
		{"unit suffix name", &recordingInvoker{}, []string{"register", "--name", "beep.service", "--at", "5m", "true"}, ExitUsage},
		{"missing name", &recordingInvoker{}, []string{"deregister"}, ExitUsage},
		{"missing program", &recordingInvoker{}, []string{"register", "--name", "x", "--at", "5m"}, ExitUsage},
		{"bad wake time", &recordingInvoker{}, []string{"register", "--name", "x", "--at", "whenever", "true"}, ExitUsage},
		{"bad flag", &recordingInvoker{}, []string{"deregister", "--nope"}, ExitUsage},
		{"both scopes", &recordingInvoker{}, []string{"--user", "--system", "deregister", "--name", "x"}, ExitUsage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := setup(t, tc.inv, baseConfig)
			_, err := run(t, append([]string{"--config", cfg}, tc.args...)...)
			if got := ExitCode(err); got != tc.want {
				t.Fatalf("ExitCode(%v) = %d, want %d", err, got, tc.want)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	cfg := setup(t, &recordingInvoker{}, baseConfig)
	out, err := run(t, "--config", cfg, "encode", "00:05")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(out, "on-calendar: 2024-01-01 00:05:00 UTC") || !strings.Contains(out, "kind:        clock") {
		t.Fatalf("output = %q", out)
	}
}

func TestHistory(t *testing.T) {
	cfg := setup(t, &recordingInvoker{}, baseConfig+"storage:\n  driver: file\n  path: $DIR/audit\n")
	if _, err := run(t, "--config", cfg, "register", "--name", "h1", "--at", "5m", "echo", "hi"); err != nil {
		t.Fatalf("register: %v", err)
	}
	out, err := run(t, "--config", cfg, "history", "-n", "5")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "register") || !strings.Contains(out, "h1") || !strings.Contains(out, "echo hi") {
		t.Fatalf("output = %q", out)
	}
}

func TestHistoryWithoutStorage(t *testing.T) {
	cfg := setup(t, &recordingInvoker{}, baseConfig)
	if _, err := run(t, "--config", cfg, "history"); ExitCode(err) != ExitFailure {
		t.Fatalf("history without storage = %v", err)
	}
}

func contains(xs []string, v string) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
