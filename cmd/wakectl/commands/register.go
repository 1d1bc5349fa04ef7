package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"systemdwake/internal/app"
	"systemdwake/pkg/wake"
)

type registerFlags struct {
	name   string
	at     string
	dir    string
	env    []string
	unset  []string
	dryRun bool
}

func newRegisterCmd(g *globalFlags) *cobra.Command {
	f := &registerFlags{}
	cmd := &cobra.Command{
		Use:   "register --name NAME --at WHEN [flags] -- PROGRAM [ARG...]",
		Short: "Schedule PROGRAM to run once at WHEN",
		Long: `Schedule PROGRAM to run once at WHEN under the timer NAME.

WHEN is an RFC 3339 timestamp, a duration from now ("90m"), a wall clock
time ("07:30", next occurrence) or a cron expression ("0 9 * * MON",
"@daily", next occurrence). Prefix with at:, in:, clock: or cron: to force
a form. The schedule has minute resolution; seconds are dropped.`,
		Example: `  wakectl register --name alarm-1 --at 07:30 -- mpv ~/alarm.ogg
  wakectl register --name backup --at in:2h --env TARGET=/mnt -- /usr/local/bin/backup --full`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return usagef("register: PROGRAM is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegister(cmd, g, f, args)
		},
	}
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().StringVar(&f.name, "name", "", "timer name, the handle used to deregister (required)")
	cmd.Flags().StringVar(&f.at, "at", "", "wake time expression (required)")
	cmd.Flags().StringVar(&f.dir, "dir", "", "working directory for the command")
	cmd.Flags().StringArrayVar(&f.env, "env", nil, "environment entry KEY=VALUE (repeatable)")
	cmd.Flags().StringArrayVar(&f.unset, "unset", nil, "environment variable to remove from the job (repeatable)")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "print the systemd-run invocation without running it")
	return cmd
}

func runRegister(cmd *cobra.Command, g *globalFlags, f *registerFlags, args []string) error {
	if f.name == "" {
		return usagef("register: --name is required")
	}
	if f.at == "" {
		return usagef("register: --at is required")
	}
	name, err := wake.NewTimerName(f.name)
	if err != nil {
		return err
	}

	a, err := g.open(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	spec, err := a.ParseWake(f.at, nowFunc())
	if err != nil {
		return usageError{err}
	}

	c := wake.Command{Path: args[0], Args: args[1:], Env: f.env, Unset: f.unset}
	if f.dir != "" {
		dir, err := filepath.Abs(f.dir)
		if err != nil {
			return usageError{err}
		}
		c.Dir = dir
	}

	out := cmd.OutOrStdout()
	if f.dryRun {
		sargs, err := a.Scheduler().RegisterArgs(spec.At, name, c)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, wake.FormatArgv(runTool(a), sargs))
		return nil
	}

	if err := a.Register(cmd.Context(), app.RegisterRequest{Name: name, At: spec.At, Command: c}); err != nil {
		return err
	}
	fmt.Fprintf(out, "registered %s for %s (%s)\n",
		name, spec.At.In(a.Location()).Format("2006-01-02 15:04 MST"), wake.EncodeSchedule(spec.At))
	return nil
}

func runTool(a *app.App) string {
	if t := a.Config().Systemd.RunTool; t != "" {
		return t
	}
	return wake.DefaultRunTool
}
