// internal/sched/engine.go

package sched

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"
)

// ErrInvalidTask is returned for task templates the engine cannot run.
var ErrInvalidTask = errors.New("invalid task")

// Engine runs one policy over a fixed task template. The template is never
// mutated, so Run can be called any number of times with identical results.
type Engine struct {
	policy     Policy
	specs      []TaskSpec
	switchCost float64
	logger     *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for dispatch and run records.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithContextSwitchCost overrides DefaultContextSwitchCost. Negative costs
// are ignored.
func WithContextSwitchCost(cost float64) Option {
	return func(e *Engine) {
		if cost >= 0 {
			e.switchCost = cost
		}
	}
}

// Result is the output of one run.
type Result struct {
	RunID    string        `json:"run_id"`
	Snapshot Snapshot      `json:"snapshot"`
	Events   []StatusEvent `json:"events,omitempty"`
}

// New validates the templates and returns an engine for policy.
func New(policy Policy, specs []TaskSpec, opts ...Option) (*Engine, error) {
	seen := make(map[string]struct{}, len(specs))
	for i, spec := range specs {
		switch {
		case spec.Name == "":
			return nil, fmt.Errorf("%w: task %d has no name", ErrInvalidTask, i)
		case spec.Arrival < 0:
			return nil, fmt.Errorf("%w: task %q arrives at %d", ErrInvalidTask, spec.Name, spec.Arrival)
		case spec.Deadline != nil && *spec.Deadline < 0:
			return nil, fmt.Errorf("%w: task %q has negative deadline", ErrInvalidTask, spec.Name)
		}
		if _, dup := seen[spec.Name]; dup {
			return nil, fmt.Errorf("%w: task %q already exists", ErrInvalidTask, spec.Name)
		}
		seen[spec.Name] = struct{}{}
	}

	e := &Engine{
		policy:     policy,
		specs:      cloneSpecs(specs),
		switchCost: DefaultContextSwitchCost,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Policy returns the engine's policy.
func (e *Engine) Policy() Policy { return e.policy }

// Run simulates the policy from a fresh session and returns its metrics.
func (e *Engine) Run() Result {
	s := e.simulate()
	snap := s.Snapshot()
	snap.Policy = e.policy.Label()

	res := Result{
		RunID:    "run_" + uuid.New().String(),
		Snapshot: snap,
		Events:   s.Events(),
	}
	e.logger.Info("run complete",
		"run_id", res.RunID,
		"policy", snap.Policy,
		"tasks", len(snap.Tasks),
		"avg_turnaround", snap.AvgTurnaround,
		"overhead", snap.TotalOverhead,
		"deadline_misses", snap.DeadlineMisses,
	)
	return res
}

// Session runs the simulation and returns the final session state.
func (e *Engine) Session() *Session { return e.simulate() }

// simulate is the dispatch loop: ask the selector for a task, run it, admit
// whatever arrived meanwhile, and let the selector settle the task.
func (e *Engine) simulate() *Session {
	s := NewSession(e.specs, e.switchCost)
	sel := e.policy.selector(s)
	coalesce := e.policy.Accounting() == PerSwitch
	allReady := e.policy.IgnoresArrivals()

	if allReady {
		// the whole template is ready at time 0
		sel.Admit(s.admit(math.MaxInt64))
	} else {
		sel.Admit(s.admit(s.Now()))
	}
	for !s.Done() {
		t, quantum, ok := sel.SelectNext(s.Now())
		if !ok {
			// 1) idle: jump to the next arrival
			if !e.idleUntilNextArrival(s, sel) {
				e.logger.Error("no runnable task and no pending arrival",
					"policy", e.policy.Label(), "clock", s.Now())
				break
			}
			continue
		}

		// 2) arrival-aware policies never run a task before it arrives
		if !allReady && t.Arrival > s.Now() {
			e.idleUntil(s, sel, t.Arrival)
		}

		// 3) run the burst, then admit arrivals before settling the task
		e.dispatch(s, t, quantum, coalesce)
		sel.Admit(s.admit(s.Now()))
		sel.Settle(t)
	}
	return s
}

func (e *Engine) idleUntilNextArrival(s *Session, sel selector) bool {
	at, ok := s.nextArrival()
	if !ok {
		return false
	}
	e.idleUntil(s, sel, at)
	return true
}

func (e *Engine) idleUntil(s *Session, sel selector, at int64) {
	if at > s.Now() {
		s.emit(StatusIdle, nil, at-s.Now())
		s.clock.AdvanceTo(at)
	}
	sel.Admit(s.admit(s.Now()))
}

// dispatch runs t for at most quantum units. A task with no work left
// completes on the spot without a burst or overhead.
func (e *Engine) dispatch(s *Session, t *Task, quantum int64, coalesce bool) {
	if t.Remaining == 0 {
		s.complete(t, 0)
		return
	}
	if quantum <= 0 {
		quantum = t.Remaining
	}

	switched := s.last != t
	if !coalesce || switched {
		if coalesce && s.last != nil && !s.last.Completed {
			s.emit(StatusPreempt, s.last, 0)
		}
		s.RegisterOverhead()
		s.emit(StatusDispatch, t, 0)
	}

	start := s.Now()
	if t.FirstDispatch == Unset {
		t.FirstDispatch = start
	}
	ran := t.Consume(quantum)
	s.clock.Advance(ran)
	t.record(start, s.Now(), coalesce)
	s.last = t

	e.logger.Debug("dispatch",
		"task", t.Name,
		"start", start,
		"ran", ran,
		"remaining", t.Remaining,
	)

	if t.Remaining == 0 {
		s.complete(t, ran)
		e.logger.Debug("finish",
			"task", t.Name,
			"completion", t.Completion,
			"deadline_missed", t.DeadlineMissed,
		)
		return
	}
	if !coalesce {
		s.emit(StatusPreempt, t, ran)
	}
}

func cloneSpecs(specs []TaskSpec) []TaskSpec {
	out := make([]TaskSpec, len(specs))
	for i, spec := range specs {
		if spec.Deadline != nil {
			spec.Deadline = DeadlineOf(*spec.Deadline)
		}
		out[i] = spec
	}
	return out
}
