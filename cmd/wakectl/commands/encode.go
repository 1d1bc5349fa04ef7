package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"systemdwake/pkg/wake"
)

func newEncodeCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "encode WHEN",
		Short: "Print the wake time and OnCalendar value for WHEN",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			spec, err := a.ParseWake(args[0], nowFunc())
			if err != nil {
				return usageError{err}
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "kind:        %s\n", spec.Kind)
			fmt.Fprintf(out, "wake at:     %s\n", spec.At.In(a.Location()).Format("2006-01-02 15:04:05 MST"))
			fmt.Fprintf(out, "on-calendar: %s\n", wake.EncodeSchedule(spec.At))
			return nil
		},
	}
}
