package wake

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidName    = errors.New("invalid timer name")
	ErrInvalidCommand = errors.New("invalid command")
	ErrSpawnFailed    = errors.New("scheduler invocation could not be started")
	ErrRejected       = errors.New("rejected by scheduler")
	ErrNotFound       = errors.New("timer not found")
	ErrUnsupported    = errors.New("wake: unsupported on this platform")
)

// NameError reports why a raw string is not a legal timer name.
// errors.Is(err, ErrInvalidName) holds for every NameError.
type NameError struct {
	Name   string
	Reason string
}

func (e *NameError) Error() string {
	return fmt.Sprintf("invalid timer name %q: %s", e.Name, e.Reason)
}

func (e *NameError) Unwrap() error { return ErrInvalidName }

// InvocationError describes a failed call into the host scheduler.
//
// Kind is one of ErrSpawnFailed, ErrRejected or ErrNotFound. Err holds the
// underlying cause (for example *exec.Error or *exec.ExitError) when there is
// one. Both are reachable through errors.Is / errors.As.
type InvocationError struct {
	Op       string // "register" | "deregister"
	Kind     error
	Program  string
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *InvocationError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	if e.Kind != nil {
		b.WriteString(e.Kind.Error())
	} else {
		b.WriteString("failed")
	}
	if e.Program != "" {
		b.WriteString(" (")
		b.WriteString(e.Program)
		if e.Kind != ErrSpawnFailed {
			fmt.Fprintf(&b, " exit %d", e.ExitCode)
		}
		b.WriteString(")")
	}
	if msg := firstLine(e.Stderr); msg != "" {
		b.WriteString(": ")
		b.WriteString(msg)
	} else if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *InvocationError) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	return s
}
