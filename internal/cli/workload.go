package cli

import (
	"github.com/spf13/cobra"

	"tasksim/internal/job"
	"tasksim/internal/sched"
)

// workloadFlags selects the task set: a file, a generated set, or the sample.
type workloadFlags struct {
	path     string
	generate int
	seed     uint64
}

func (w *workloadFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&w.path, "tasks", "t", "", "Workload YAML file (default: built-in sample)")
	cmd.Flags().IntVar(&w.generate, "generate", 0, "Generate this many tasks instead of reading a file")
	cmd.Flags().Uint64Var(&w.seed, "seed", 1, "Seed for --generate")
}

func (w *workloadFlags) load() ([]sched.TaskSpec, error) {
	switch {
	case w.path != "":
		return job.Load(w.path)
	case w.generate > 0:
		return job.Generate(w.generate, w.seed), nil
	default:
		return job.Sample(), nil
	}
}
