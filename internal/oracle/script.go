// Package oracle provides scoring functions for the heuristic scheduling
// policy. The classifier behind a score is trained elsewhere; here it is
// either a JavaScript function (goja) or a linear weighting of features.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/dop251/goja"

	"tasksim/internal/sched"
)

// DefaultScriptTimeout bounds a single score(f) call.
const DefaultScriptTimeout = 250 * time.Millisecond

// ErrScriptTimeout is recorded when one score(f) call exceeds its timeout.
var ErrScriptTimeout = errors.New("oracle script timed out")

// Script scores tasks by calling a JavaScript function named score.
//
//	function score(f) { return f.slack - f.duration; }
//
// f carries duration, priority, arrival, deadline, clock, slack and wait.
// Deadline and slack are Infinity for tasks without a deadline.
//
// Once a call is interrupted (timeout or a cancelled Watch context) the
// script is halted: later calls score NaN without entering the runtime.
type Script struct {
	mu      sync.Mutex
	vm      *goja.Runtime
	fn      goja.Callable
	timeout time.Duration
	first   error // first error, kept for diagnostics

	haltMu  sync.Mutex
	haltErr error
}

// ScriptOption configures a Script.
type ScriptOption func(*Script)

// WithTimeout overrides DefaultScriptTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) ScriptOption {
	return func(s *Script) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewScript compiles src and resolves its score function.
func NewScript(src string, opts ...ScriptOption) (*Script, error) {
	prog, err := goja.Compile("oracle.js", src, false)
	if err != nil {
		return nil, fmt.Errorf("compile oracle script: %w", err)
	}

	vm := goja.New()
	s := &Script{vm: vm, timeout: DefaultScriptTimeout}
	for _, opt := range opts {
		opt(s)
	}

	// top-level code is bounded by the same timeout
	timer := time.AfterFunc(s.timeout, func() { vm.Interrupt(ErrScriptTimeout) })
	_, err = vm.RunProgram(prog)
	timer.Stop()
	vm.ClearInterrupt()
	if err != nil {
		return nil, fmt.Errorf("run oracle script: %w", interruptCause(err))
	}

	fn, ok := goja.AssertFunction(vm.Get("score"))
	if !ok {
		return nil, fmt.Errorf("oracle script does not define a score(f) function")
	}
	s.fn = fn
	return s, nil
}

// Score calls score(f). A thrown exception, a timeout or a non-numeric
// result scores NaN, which the policy ranks below every other candidate.
func (s *Script) Score(f sched.Features) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.halted(); err != nil {
		s.fail(err)
		return math.NaN()
	}

	arg := s.vm.ToValue(map[string]any{
		"duration": f.Duration,
		"priority": f.Priority,
		"arrival":  f.Arrival,
		"deadline": f.Deadline,
		"clock":    f.Clock,
		"slack":    f.Slack,
		"wait":     f.Wait,
	})

	timer := time.AfterFunc(s.timeout, func() { s.halt(ErrScriptTimeout) })
	val, err := s.fn(goja.Undefined(), arg)
	timer.Stop()
	if s.halted() == nil {
		s.vm.ClearInterrupt()
	}

	if err != nil {
		s.fail(interruptCause(err))
		return math.NaN()
	}
	if goja.IsUndefined(val) || goja.IsNull(val) {
		return math.NaN()
	}
	return val.ToFloat()
}

// Watch halts the script when ctx is done, interrupting a running call.
// The returned stop function releases the watch.
func (s *Script) Watch(ctx context.Context) (stop func() bool) {
	return context.AfterFunc(ctx, func() { s.halt(context.Cause(ctx)) })
}

// Err returns the first error raised by the script, if any.
func (s *Script) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.first
}

func (s *Script) fail(err error) {
	if s.first == nil {
		s.first = fmt.Errorf("score: %w", err)
	}
}

// halt marks the script unusable and interrupts the runtime. Safe to call
// from any goroutine.
func (s *Script) halt(cause error) {
	s.haltMu.Lock()
	if s.haltErr == nil {
		s.haltErr = cause
	}
	s.haltMu.Unlock()
	s.vm.Interrupt(cause)
}

func (s *Script) halted() error {
	s.haltMu.Lock()
	defer s.haltMu.Unlock()
	return s.haltErr
}

// interruptCause unwraps a goja interrupt into the error that caused it.
func interruptCause(err error) error {
	var ie *goja.InterruptedError
	if errors.As(err, &ie) {
		if cause, ok := ie.Value().(error); ok {
			return cause
		}
	}
	return err
}
