package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"tasksim/internal/sched"
)

func newPoliciesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "policies",
		Short: "List supported scheduling policies",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-12s  %s\n", "NAME", "TITLE")
			fmt.Fprintf(out, "%-12s  %s\n", "----", "-----")
			for _, k := range sched.Kinds() {
				fmt.Fprintf(out, "%-12s  %s\n", k, k.Title())
			}
			return nil
		},
	}
}
