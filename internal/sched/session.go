// internal/sched/session.go

package sched

import (
	"cmp"
	"slices"
)

// DefaultContextSwitchCost is charged by RegisterOverhead when no other
// cost is configured.
const DefaultContextSwitchCost = 0.1

// Session is the mutable state of one run. It is built from the templates at
// the start of every Engine.Run and owned by that run alone.
type Session struct {
	tasks      []*Task // template order
	arrivals   []*Task // ordered by (arrival, template index)
	nextArr    int     // cursor into arrivals
	clock      LogicalClock
	switchCost float64
	overhead   float64
	misses     int
	completed  []*Task // completion order
	events     []StatusEvent
	last       *Task // task that most recently held the processor
}

// NewSession deep-copies specs into fresh run state.
func NewSession(specs []TaskSpec, switchCost float64) *Session {
	s := &Session{
		tasks:      make([]*Task, len(specs)),
		switchCost: switchCost,
	}
	for i, spec := range specs {
		s.tasks[i] = newTask(spec, i)
	}
	s.arrivals = slices.Clone(s.tasks)
	slices.SortStableFunc(s.arrivals, func(a, b *Task) int {
		return cmp.Compare(a.Arrival, b.Arrival)
	})
	return s
}

// Tasks returns the run's tasks in template order.
func (s *Session) Tasks() []*Task { return s.tasks }

// Completed returns finished tasks in completion order.
func (s *Session) Completed() []*Task { return s.completed }

// Now returns the simulated clock.
func (s *Session) Now() int64 { return s.clock.Now() }

// Events returns the recorded trace.
func (s *Session) Events() []StatusEvent { return s.events }

// Overhead returns the accumulated overhead.
func (s *Session) Overhead() float64 { return s.overhead }

// DeadlineMisses returns how many completed tasks missed their deadline.
func (s *Session) DeadlineMisses() int { return s.misses }

// RegisterOverhead charges one context switch at the configured cost.
func (s *Session) RegisterOverhead() { s.RegisterOverheadAmount(s.switchCost) }

// RegisterOverheadAmount adds amount to the accumulated overhead.
func (s *Session) RegisterOverheadAmount(amount float64) { s.overhead += amount }

// Done reports whether every task has completed.
func (s *Session) Done() bool { return len(s.completed) == len(s.tasks) }

// admit moves every task whose arrival is <= until into the ready set and
// returns them in (arrival, template) order.
func (s *Session) admit(until int64) []*Task {
	var out []*Task
	for s.nextArr < len(s.arrivals) && s.arrivals[s.nextArr].Arrival <= until {
		t := s.arrivals[s.nextArr]
		s.nextArr++
		t.admitted = true
		out = append(out, t)
		s.emit(StatusEnqueue, t, 0)
	}
	return out
}

// nextArrival returns the arrival time of the earliest task not yet admitted.
func (s *Session) nextArrival() (int64, bool) {
	if s.nextArr >= len(s.arrivals) {
		return 0, false
	}
	return s.arrivals[s.nextArr].Arrival, true
}

// complete finalizes t at the current clock and updates the miss counter.
// ran is the length of the burst that finished it, for the trace.
func (s *Session) complete(t *Task, ran int64) {
	if t.Completed {
		return
	}
	t.finish(s.clock.Now())
	if t.DeadlineMissed {
		s.misses++
	}
	s.completed = append(s.completed, t)
	s.emit(StatusFinish, t, ran)
}

func (s *Session) emit(kind StatusKind, t *Task, ran int64) {
	ev := StatusEvent{Time: s.clock.Now(), Kind: kind, Ran: ran}
	if t != nil {
		ev.Task = t.Name
		ev.Remaining = t.Remaining
	}
	s.events = append(s.events, ev)
}
