package wake

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"

	logx "systemdwake/pkg/logx"
)

const (
	ExitUsage    = 2
	ExitNotFound = 127
)

// LaunchOptions wires the re-executed command. Nil streams default to the
// launcher's own stdio.
type LaunchOptions struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Log    logx.Logger
}

// Launch is the fire-time half of Register: argv[0] is the original program,
// the rest its arguments, exactly as Register serialised them.
//
// The program is resolved on PATH now, runs with the launcher's environment
// and working directory, and its exit status is returned as the launcher's
// own. An error is returned only when the program could not be run at all.
func Launch(ctx context.Context, argv []string, opts LaunchOptions) (int, error) {
	if len(argv) == 0 || argv[0] == "" {
		return ExitUsage, errors.New("usage: systemd-wake PROGRAM [ARG...]")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	log := opts.Log

	path, err := exec.LookPath(argv[0])
	if err != nil {
		return ExitNotFound, fmt.Errorf("resolve %q: %w", argv[0], err)
	}

	cmd := exec.CommandContext(ctx, path)
	cmd.Args = append([]string(nil), argv...)
	cmd.Stdin = opts.Stdin
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr
	if cmd.Stdin == nil {
		cmd.Stdin = os.Stdin
	}
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	log.Info("launching", logx.String("program", path), logx.Strings("argv", argv))
	start := time.Now()
	err = cmd.Run()
	took := time.Since(start)

	if err == nil {
		log.Info("command finished", logx.Int("exit_code", 0), logx.Duration("took", took))
		return 0, nil
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		code := exitStatus(ee)
		log.Warn("command failed", logx.Int("exit_code", code), logx.Duration("took", took))
		return code, nil
	}
	return 1, fmt.Errorf("run %q: %w", argv[0], err)
}

// exitStatus maps a signal death to the shell convention 128+N.
func exitStatus(ee *exec.ExitError) int {
	if ws, ok := ee.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	if code := ee.ExitCode(); code >= 0 {
		return code
	}
	return 1
}
