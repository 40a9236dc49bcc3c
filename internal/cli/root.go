package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"tasksim/internal/logging"
	"tasksim/internal/sched"
)

var (
	flagConfig    string
	flagEnvFile   string
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string

	logger *slog.Logger
	cfg    sched.Config
)

// NewRootCmd creates the root cobra command for the tasksim CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tasksim",
		Short: "Deterministic CPU scheduling simulator",
		Long:  "tasksim replays classic scheduling policies over a task workload in logical time.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := sched.LoadDotEnv(flagEnvFile); err != nil {
				return err
			}
			var err error
			if cfg, err = sched.Load(flagConfig); err != nil {
				return err
			}
			if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("log-level") {
				cfg.Log.Level = flagLogLevel
			}
			if flags.Changed("log-format") {
				cfg.Log.Format = flagLogFormat
			}
			if flagDebug {
				cfg.Log.Level = "debug"
			}
			logger = logging.NewLoggerWithWriter(logging.ParseLevel(cfg.Log.Level), cfg.Log.Format, cmd.ErrOrStderr())
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagConfig, "config", "config.yml", "Config file (missing file = defaults)")
	root.PersistentFlags().StringVar(&flagEnvFile, "env-file", ".env", "Environment file with TASKSIM_* overrides")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(
		newRunCmd(),
		newCompareCmd(),
		newGenerateCmd(),
		newPoliciesCmd(),
		newServeCmd(),
	)

	return root
}
