package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"tasksim/internal/report"
	"tasksim/internal/runner"
	"tasksim/internal/sched"
)

func newCompareCmd() *cobra.Command {
	var (
		workload workloadFlags
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Run every policy over the same workload",
		RunE: func(cmd *cobra.Command, args []string) error {
			specs, err := workload.load()
			if err != nil {
				return err
			}
			results, err := runner.Compare(cmd.Context(), cfg, specs, logger)
			if err != nil {
				return fmt.Errorf("compare: %w", err)
			}

			snaps := make([]sched.Snapshot, len(results))
			for i, r := range results {
				snaps[i] = r.Snapshot
			}
			if asJSON {
				return report.WriteJSON(cmd.OutOrStdout(), snaps)
			}
			return report.WriteComparison(cmd.OutOrStdout(), snaps)
		},
	}

	workload.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print snapshots as JSON")
	return cmd
}
