package wake

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// Result is the outcome of a process that was started successfully.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Invoker runs program with args and waits for it to exit.
//
// A non-nil error means the process could not be started at all; a process
// that ran and exited non-zero is reported through Result.ExitCode.
type Invoker interface {
	Invoke(ctx context.Context, program string, args []string) (Result, error)
}

// InvokerFunc adapts a function to Invoker.
type InvokerFunc func(ctx context.Context, program string, args []string) (Result, error)

func (f InvokerFunc) Invoke(ctx context.Context, program string, args []string) (Result, error) {
	return f(ctx, program, args)
}

// ExecInvoker spawns real processes through os/exec. Arguments are passed as
// argv, never through a shell.
type ExecInvoker struct {
	// Env replaces the child's environment when non-nil.
	Env []string
}

func (e ExecInvoker) Invoke(ctx context.Context, program string, args []string) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cmd := exec.CommandContext(ctx, program, args...)
	if e.Env != nil {
		cmd.Env = e.Env
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return Result{}, err
	}
	return waitResult(cmd.Wait(), &stdout, &stderr), nil
}

// waitResult builds the Result of a started process from the error of Wait. Once started, the process
// counts as having run: a signal death or a Wait failure without an exit
// status (I/O copy error) reports ExitCode -1, with the cause appended to
// Stderr.
func waitResult(err error, stdout, stderr *bytes.Buffer) Result {
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		return res
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) && ee.ExitCode() >= 0 {
		res.ExitCode = ee.ExitCode()
		return res
	}
	res.ExitCode = -1
	if ee == nil {
		if len(res.Stderr) > 0 && res.Stderr[len(res.Stderr)-1] != '\n' {
			res.Stderr = append(res.Stderr, '\n')
		}
		res.Stderr = append(res.Stderr, "wait: "+err.Error()...)
	}
	return res
}
