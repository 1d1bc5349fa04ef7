package wake

import (
	"context"
	"fmt"
	"strings"
	"time"

	logx "systemdwake/pkg/logx"
)

// Scope selects which systemd manager owns the timers.
type Scope string

const (
	ScopeUser   Scope = "user"
	ScopeSystem Scope = "system"
)

const (
	DefaultRunTool  = "systemd-run"
	DefaultStopTool = "systemctl"
	DefaultLauncher = "systemd-wake"
)

// systemctl exits with LSB status 5 ("program is not installed") when the
// unit it was asked to stop is not loaded.
const systemctlExitNotLoaded = 5

// Canceller stops a pending timer by name. Scheduler uses it for Deregister
// when set; DBusCanceller is the built-in alternative to spawning systemctl.
type Canceller interface {
	Deregister(ctx context.Context, name TimerName) error
}

// Config configures a Scheduler. Zero fields take defaults.
type Config struct {
	Scope    Scope
	RunTool  string
	StopTool string
	// Launcher is the executable the timer runs; it receives the original
	// program and arguments as its argv.
	Launcher string
	// Description is passed to systemd-run as --description (prefix + name).
	Description string

	Invoker   Invoker
	Canceller Canceller
	Log       logx.Logger
}

// Scheduler issues systemd-run / systemctl invocations.
//
// It holds no per-job state and is safe for concurrent use. It does not
// serialise calls for the same name; overlapping Register/Deregister on one
// name race inside systemd.
type Scheduler struct {
	scope       Scope
	runTool     string
	stopTool    string
	launcher    string
	description string

	invoker   Invoker
	canceller Canceller
	log       logx.Logger
}

// NewScheduler returns a Scheduler for the user manager with default tools.
func NewScheduler() *Scheduler { return New(Config{}) }

func New(cfg Config) *Scheduler {
	s := &Scheduler{
		scope:       cfg.Scope,
		runTool:     strings.TrimSpace(cfg.RunTool),
		stopTool:    strings.TrimSpace(cfg.StopTool),
		launcher:    strings.TrimSpace(cfg.Launcher),
		description: cfg.Description,
		invoker:     cfg.Invoker,
		canceller:   cfg.Canceller,
		log:         cfg.Log,
	}
	if s.scope == "" {
		s.scope = ScopeUser
	}
	if s.runTool == "" {
		s.runTool = DefaultRunTool
	}
	if s.stopTool == "" {
		s.stopTool = DefaultStopTool
	}
	if s.launcher == "" {
		s.launcher = DefaultLauncher
	}
	if s.invoker == nil {
		s.invoker = ExecInvoker{}
	}
	return s
}

func (s *Scheduler) Scope() Scope { return s.scope }

// RegisterArgs builds the systemd-run argv (without the program) for the
// given job. It performs no I/O.
func (s *Scheduler) RegisterArgs(at time.Time, name TimerName, cmd Command) ([]string, error) {
	if name.IsZero() {
		return nil, &NameError{Reason: "must not be empty"}
	}
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	args := make([]string, 0, 8+len(cmd.Env)+len(cmd.Unset)+len(cmd.Args))
	if s.scope == ScopeUser {
		args = append(args, "--user")
	}
	args = append(args,
		"--unit="+name.String(),
		"--on-calendar="+EncodeSchedule(at),
		"--timer-property=RemainAfterElapse=no",
		"--collect",
	)
	if s.description != "" {
		args = append(args, "--description="+s.description+" "+name.String())
	}
	if cmd.Dir != "" {
		args = append(args, "--working-directory="+cmd.Dir)
	}
	for _, kv := range cmd.Env {
		args = append(args, "--setenv="+kv)
	}
	for _, k := range cmd.Unset {
		args = append(args, "--property=UnsetEnvironment="+k)
	}

	args = append(args, "--", escapeExecArg(s.launcher))
	for _, a := range cmd.Argv() {
		args = append(args, escapeExecArg(a))
	}
	return args, nil
}

// DeregisterArgs builds the systemctl argv (without the program).
func (s *Scheduler) DeregisterArgs(name TimerName) []string {
	args := make([]string, 0, 3)
	if s.scope == ScopeUser {
		args = append(args, "--user")
	}
	return append(args, "stop", name.Timer())
}

// Register asks systemd to run cmd once at the given time under name.
//
// It blocks until systemd-run exits. A non-zero exit (name already in use,
// malformed schedule, no user manager, ...) is reported as ErrRejected with
// systemd-run's stderr attached. Nothing is retried.
func (s *Scheduler) Register(ctx context.Context, at time.Time, name TimerName, cmd Command) error {
	args, err := s.RegisterArgs(at, name, cmd)
	if err != nil {
		return err
	}
	s.log.Debug("registering timer",
		logx.String("unit", name.String()),
		logx.String("on_calendar", EncodeSchedule(at)),
		logx.String("program", s.runTool),
		logx.Strings("args", args),
	)
	res, err := s.invoker.Invoke(ctx, s.runTool, args)
	if err != nil {
		return &InvocationError{Op: "register", Kind: ErrSpawnFailed, Program: s.runTool, Args: args, Err: err}
	}
	if res.ExitCode != 0 {
		return &InvocationError{
			Op:       "register",
			Kind:     ErrRejected,
			Program:  s.runTool,
			Args:     args,
			ExitCode: res.ExitCode,
			Stderr:   string(res.Stderr),
		}
	}
	return nil
}

// Deregister stops the pending timer for name.
//
// Stopping a name with no loaded timer is an error (ErrNotFound when systemd's
// response allows telling it apart, ErrRejected otherwise); callers that want
// idempotent cancellation should treat ErrNotFound as success.
func (s *Scheduler) Deregister(ctx context.Context, name TimerName) error {
	if name.IsZero() {
		return &NameError{Reason: "must not be empty"}
	}
	if s.canceller != nil {
		s.log.Debug("deregistering timer", logx.String("unit", name.Timer()), logx.String("backend", "canceller"))
		return s.canceller.Deregister(ctx, name)
	}

	args := s.DeregisterArgs(name)
	s.log.Debug("deregistering timer",
		logx.String("unit", name.Timer()),
		logx.String("program", s.stopTool),
		logx.Strings("args", args),
	)
	res, err := s.invoker.Invoke(ctx, s.stopTool, args)
	if err != nil {
		return &InvocationError{Op: "deregister", Kind: ErrSpawnFailed, Program: s.stopTool, Args: args, Err: err}
	}
	if res.ExitCode == 0 {
		return nil
	}
	kind := ErrRejected
	if stopNotFound(res) {
		kind = ErrNotFound
	}
	return &InvocationError{
		Op:       "deregister",
		Kind:     kind,
		Program:  s.stopTool,
		Args:     args,
		ExitCode: res.ExitCode,
		Stderr:   string(res.Stderr),
	}
}

var notFoundMarkers = []string{
	"not loaded",
	"not found",
	"nosuchunit",
	"no such unit",
	"does not exist",
}

// stopNotFound is best-effort: systemctl has no stable machine-readable error
// code, so it falls back to matching the diagnostic text.
func stopNotFound(res Result) bool {
	if res.ExitCode == systemctlExitNotLoaded {
		return true
	}
	msg := strings.ToLower(string(res.Stderr))
	for _, m := range notFoundMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

var defaultScheduler = NewScheduler()

// Register schedules cmd with the default user-scope Scheduler.
func Register(ctx context.Context, at time.Time, name TimerName, cmd Command) error {
	return defaultScheduler.Register(ctx, at, name, cmd)
}

// Deregister cancels name with the default user-scope Scheduler.
func Deregister(ctx context.Context, name TimerName) error {
	return defaultScheduler.Deregister(ctx, name)
}

// FormatArgv renders argv for logs and dry runs. It is not shell-safe.
func FormatArgv(program string, args []string) string {
	var b strings.Builder
	b.WriteString(program)
	for _, a := range args {
		b.WriteByte(' ')
		if a == "" || strings.ContainsAny(a, " \t\n'\"\\$") {
			fmt.Fprintf(&b, "%q", a)
			continue
		}
		b.WriteString(a)
	}
	return b.String()
}
