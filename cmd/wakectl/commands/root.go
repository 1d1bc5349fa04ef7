package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"systemdwake/internal/app"
	"systemdwake/pkg/wake"
)

// Exit codes returned by wakectl.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitUsage       = 2
	ExitNotFound    = 3
	ExitRejected    = 4
	ExitSpawnFailed = 5
)

type globalFlags struct {
	configPath string
	user       bool
	system     bool
	logLevel   string
}

// overridable in tests
var (
	newInvoker func() wake.Invoker
	nowFunc    = time.Now
)

// NewRootCmd builds the wakectl command tree.
func NewRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "wakectl",
		Short: "Schedule one-shot commands with systemd timers",
		Long: `wakectl registers a transient systemd timer that runs a command once at a
given time, and cancels it again by name. The name is the only handle: no
local registry of pending jobs is kept.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/systemd-wake/config.yaml)")
	pf.BoolVar(&g.user, "user", false, "use the per-user systemd manager")
	pf.BoolVar(&g.system, "system", false, "use the system manager")
	pf.StringVar(&g.logLevel, "log-level", "", "log level override (trace|debug|info|warn|error)")

	root.AddCommand(
		newRegisterCmd(g),
		newDeregisterCmd(g),
		newEncodeCmd(g),
		newHistoryCmd(g),
	)
	return root
}

func (g *globalFlags) options() (app.Options, error) {
	opts := app.Options{ConfigPath: g.configPath, LogLevel: g.logLevel}
	if g.user && g.system {
		return opts, usagef("--user and --system are mutually exclusive")
	}
	switch {
	case g.user:
		opts.Scope = string(wake.ScopeUser)
	case g.system:
		opts.Scope = string(wake.ScopeSystem)
	}
	if newInvoker != nil {
		opts.Invoker = newInvoker()
	}
	return opts, nil
}

func (g *globalFlags) open(cmd *cobra.Command) (*app.App, error) {
	opts, err := g.options()
	if err != nil {
		return nil, err
	}
	return app.NewApp(cmd.Context(), opts)
}

type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usagef(format string, a ...any) error {
	return usageError{fmt.Errorf(format, a...)}
}

// ExitCode maps an error returned by the command tree to a process exit code.
func ExitCode(err error) int {
	var ue usageError
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &ue), errors.Is(err, wake.ErrInvalidName), errors.Is(err, wake.ErrInvalidCommand):
		return ExitUsage
	case errors.Is(err, wake.ErrNotFound):
		return ExitNotFound
	case errors.Is(err, wake.ErrRejected):
		return ExitRejected
	case errors.Is(err, wake.ErrSpawnFailed):
		return ExitSpawnFailed
	default:
		return ExitFailure
	}
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usagef("%s: accepts %d arg(s), received %d", cmd.Name(), n, len(args))
		}
		return nil
	}
}
