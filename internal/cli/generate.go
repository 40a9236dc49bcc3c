package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tasksim/internal/job"
)

func newGenerateCmd() *cobra.Command {
	var (
		count int
		seed  uint64
		out   string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a random workload file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if count <= 0 {
				return fmt.Errorf("--count must be positive")
			}
			data, err := job.Marshal(job.Generate(count, seed))
			if err != nil {
				return fmt.Errorf("encode workload: %w", err)
			}
			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write workload: %w", err)
			}
			logger.Info("wrote workload", "path", out, "tasks", count)
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 10, "Number of tasks")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "Random seed")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "Output file (- for stdout)")
	return cmd
}
