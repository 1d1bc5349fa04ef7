package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"systemdwake/pkg/wake"
)

func newDeregisterCmd(g *globalFlags) *cobra.Command {
	var (
		name          string
		ignoreMissing bool
	)
	cmd := &cobra.Command{
		Use:   "deregister --name NAME",
		Short: "Cancel the pending timer NAME",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if name == "" {
				return usagef("deregister: --name is required")
			}
			n, err := wake.NewTimerName(name)
			if err != nil {
				return err
			}
			a, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Deregister(cmd.Context(), n, ignoreMissing); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deregistered %s\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "timer name given at register time (required)")
	cmd.Flags().BoolVar(&ignoreMissing, "ignore-missing", false, "succeed when no such timer is loaded")
	return cmd
}
