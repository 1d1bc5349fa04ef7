package commands

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"systemdwake/internal/storage"
)

func newHistoryCmd(g *globalFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent register/deregister attempts from the audit store",
		Long: `Show recent register/deregister attempts recorded by wakectl.

The audit store is a log of what this tool asked systemd to do. It is never
consulted to decide whether a timer exists; ask systemd for that
(systemctl list-timers).`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit <= 0 {
				return usagef("history: -n must be positive")
			}
			a, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			entries, err := a.History(cmd.Context(), limit)
			if errors.Is(err, storage.ErrDisabled) {
				return errors.New("history: no audit storage configured (set storage.driver)")
			}
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tACTION\tNAME\tSCOPE\tSCHEDULE\tRESULT\tCOMMAND")
			for _, e := range entries {
				res := "ok"
				if !e.OK {
					res = "failed: " + e.Error
				}
				command := strings.TrimSpace(e.Program + " " + strings.Join(e.Args, " "))
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					e.At.In(a.Location()).Format("2006-01-02 15:04:05"),
					e.Action, e.Name, e.Scope, dash(e.Schedule), res, dash(command))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "n", "n", 20, "number of entries to show")
	return cmd
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
