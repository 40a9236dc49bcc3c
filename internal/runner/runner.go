// Package runner turns a configuration and a workload into engine runs.
package runner

import (
	"context"
	"fmt"
	"log/slog"

	"tasksim/internal/oracle"
	"tasksim/internal/sched"
)

// PolicyFor builds the policy of kind from cfg. The oracle is only built for
// the heuristic policy.
func PolicyFor(cfg sched.Config, kind sched.Kind) (sched.Policy, error) {
	var o sched.Oracle
	if kind == sched.Heuristic {
		var err error
		if o, err = oracle.FromConfig(cfg.Heuristic); err != nil {
			return sched.Policy{}, fmt.Errorf("build oracle: %w", err)
		}
	}
	return sched.NewPolicy(kind, cfg.Options(kind, o))
}

// Run simulates specs under the policy named in cfg.
func Run(ctx context.Context, cfg sched.Config, specs []sched.TaskSpec, logger *slog.Logger) (sched.Result, error) {
	kind, err := sched.ParseKind(cfg.Policy)
	if err != nil {
		return sched.Result{}, err
	}
	return RunKind(ctx, cfg, kind, specs, logger)
}

// watcher is implemented by oracles that can be interrupted through ctx.
type watcher interface {
	Watch(ctx context.Context) (stop func() bool)
}

// failer is implemented by oracles that record their own failures.
type failer interface {
	Err() error
}

// RunKind simulates specs under kind, ignoring cfg.Policy. A run whose
// oracle failed (threw, timed out or was cancelled through ctx) returns the
// oracle's error instead of a result.
func RunKind(ctx context.Context, cfg sched.Config, kind sched.Kind, specs []sched.TaskSpec, logger *slog.Logger) (sched.Result, error) {
	if err := ctx.Err(); err != nil {
		return sched.Result{}, err
	}
	policy, err := PolicyFor(cfg, kind)
	if err != nil {
		return sched.Result{}, err
	}
	engine, err := sched.New(policy, specs,
		sched.WithContextSwitchCost(cfg.ContextSwitchCost),
		sched.WithLogger(logger),
	)
	if err != nil {
		return sched.Result{}, err
	}

	if w, ok := policy.Oracle().(watcher); ok {
		stop := w.Watch(ctx)
		defer stop()
	}
	res := engine.Run()
	if f, ok := policy.Oracle().(failer); ok {
		if err := f.Err(); err != nil {
			return sched.Result{}, fmt.Errorf("oracle: %w", err)
		}
	}
	return res, nil
}

// Compare runs every policy over the same workload, in sched.Kinds order.
func Compare(ctx context.Context, cfg sched.Config, specs []sched.TaskSpec, logger *slog.Logger) ([]sched.Result, error) {
	results := make([]sched.Result, 0, len(sched.Kinds()))
	for _, kind := range sched.Kinds() {
		res, err := RunKind(ctx, cfg, kind, specs, logger)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", kind, err)
		}
		results = append(results, res)
	}
	return results, nil
}
