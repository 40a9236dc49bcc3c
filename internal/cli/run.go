package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tasksim/internal/report"
	"tasksim/internal/runner"
)

func newRunCmd() *cobra.Command {
	var (
		workload  workloadFlags
		policy    string
		quantum   int64
		base      int64
		cost      float64
		csvPath   string
		tracePath string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Simulate one policy over a workload",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("policy") {
				cfg.Policy = policy
			}
			if flags.Changed("quantum") {
				cfg.Quantum = quantum
				cfg.Heuristic.Quantum = quantum
			}
			if flags.Changed("base-quantum") {
				cfg.BaseQuantum = base
			}
			if flags.Changed("cost") {
				cfg.ContextSwitchCost = cost
			}

			specs, err := workload.load()
			if err != nil {
				return err
			}
			res, err := runner.Run(cmd.Context(), cfg, specs, logger)
			if err != nil {
				return fmt.Errorf("simulate: %w", err)
			}

			if csvPath != "" {
				if err := writeFile(csvPath, func(f *os.File) error { return report.WriteCSV(f, res.Snapshot) }); err != nil {
					return fmt.Errorf("export csv: %w", err)
				}
				logger.Info("wrote results", "path", csvPath)
			}
			if tracePath != "" {
				if err := writeFile(tracePath, func(f *os.File) error { return report.WriteTrace(f, res.Events) }); err != nil {
					return fmt.Errorf("export trace: %w", err)
				}
				logger.Info("wrote trace", "path", tracePath)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return report.WriteJSON(out, res)
			}
			return report.WriteTable(out, res.Snapshot)
		},
	}

	workload.register(cmd)
	cmd.Flags().StringVarP(&policy, "policy", "p", "", "Policy (fifo, sjf, priority, rr, rr-dynamic, edf, srtf, heuristic)")
	cmd.Flags().Int64VarP(&quantum, "quantum", "q", 0, "Quantum for rr, edf and heuristic")
	cmd.Flags().Int64Var(&base, "base-quantum", 0, "Base quantum for rr-dynamic")
	cmd.Flags().Float64Var(&cost, "cost", 0, "Overhead charged per context switch")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Write the per-task export to this CSV file")
	cmd.Flags().StringVar(&tracePath, "trace", "", "Write the event trace to this CSV file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full result as JSON")
	return cmd
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
