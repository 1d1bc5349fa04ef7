package wake

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Command is the program to run at wake time.
//
// Path is looked up on PATH by the launcher when the timer fires, not at
// registration. The job runs with the service manager's environment, not the
// caller's: Env adds KEY=VALUE overrides and Unset removes variables the
// manager would otherwise pass down.
type Command struct {
	Path  string
	Args  []string
	Dir   string
	Env   []string
	Unset []string
}

// FromExec copies the program, argv, directory and explicit environment of c.
//
// The program is taken from c.Args[0] (the name as the caller wrote it) rather
// than the path exec.Command resolved, so PATH lookup happens at fire time.
func FromExec(c *exec.Cmd) Command {
	if c == nil {
		return Command{}
	}
	path := c.Path
	var args []string
	if len(c.Args) > 0 {
		path = c.Args[0]
		args = append(args, c.Args[1:]...)
	}
	return Command{
		Path: path,
		Args: args,
		Dir:  c.Dir,
		Env:  append([]string(nil), c.Env...),
	}
}

// Argv is the program followed by its arguments.
func (c Command) Argv() []string {
	out := make([]string, 0, 1+len(c.Args))
	out = append(out, c.Path)
	return append(out, c.Args...)
}

// Validate rejects commands that cannot be expressed as systemd-run options.
func (c Command) Validate() error {
	if strings.TrimSpace(c.Path) == "" {
		return fmt.Errorf("%w: program is required", ErrInvalidCommand)
	}
	if c.Dir != "" && !filepath.IsAbs(c.Dir) {
		return fmt.Errorf("%w: working directory %q must be absolute", ErrInvalidCommand, c.Dir)
	}
	set := make(map[string]bool, len(c.Env))
	for _, kv := range c.Env {
		k, _, ok := strings.Cut(kv, "=")
		if !ok || k == "" || strings.ContainsAny(k, " \t\n") {
			return fmt.Errorf("%w: environment entry %q is not KEY=VALUE", ErrInvalidCommand, kv)
		}
		if strings.ContainsAny(kv, "\n\x00") {
			return fmt.Errorf("%w: environment entry %q contains a newline or NUL", ErrInvalidCommand, k)
		}
		set[k] = true
	}
	for _, k := range c.Unset {
		if k == "" || strings.ContainsAny(k, "= \t\n\x00") {
			return fmt.Errorf("%w: %q is not an environment variable name", ErrInvalidCommand, k)
		}
		if set[k] {
			return fmt.Errorf("%w: %s is both set and unset", ErrInvalidCommand, k)
		}
	}
	for _, a := range c.Argv() {
		if strings.ContainsRune(a, 0) {
			return fmt.Errorf("%w: argument contains NUL", ErrInvalidCommand)
		}
	}
	return nil
}

// escapeExecArg doubles '$' so systemd's ExecStart= environment expansion
// hands the original bytes to the launcher.
func escapeExecArg(s string) string {
	return strings.ReplaceAll(s, "$", "$$")
}
