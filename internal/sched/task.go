package sched

import "fmt"

// Unset marks a time field that has not been assigned yet.
const Unset int64 = -1

// TaskSpec is the immutable description of one unit of work.
type TaskSpec struct {
	Name     string `yaml:"name" json:"name"`
	Duration int64  `yaml:"duration" json:"duration"`                     // work units, <= 0 completes instantly
	Priority int    `yaml:"priority" json:"priority"`                     // lower = more urgent
	Arrival  int64  `yaml:"arrival" json:"arrival"`                       // >= 0
	Deadline *int64 `yaml:"deadline,omitempty" json:"deadline,omitempty"` // relative to arrival, nil = no deadline
}

// HasDeadline reports whether the spec carries a deadline.
func (s TaskSpec) HasDeadline() bool { return s.Deadline != nil }

// AbsoluteDeadline returns arrival + deadline. ok is false without a deadline.
func (s TaskSpec) AbsoluteDeadline() (at int64, ok bool) {
	if s.Deadline == nil {
		return 0, false
	}
	return s.Arrival + *s.Deadline, true
}

// DeadlineOf is a small helper for building specs in code.
func DeadlineOf(d int64) *int64 { return &d }

// Interval is one half-open burst [Start, End) on the processor.
type Interval struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// Len returns End - Start.
func (iv Interval) Len() int64 { return iv.End - iv.Start }

// Task is a TaskSpec plus the progress of one simulation run.
type Task struct {
	TaskSpec

	Remaining      int64      // 0 <= Remaining <= Duration
	FirstDispatch  int64      // Unset until the first burst
	Completion     int64      // Unset until Remaining reaches 0
	Intervals      []Interval // ordered, non-overlapping
	Completed      bool
	DeadlineMissed bool

	index    int  // position in the template, used for tie-breaks
	admitted bool // entered the ready set
}

// newTask clones a spec into fresh run state. The deadline is copied so the
// template cannot be reached through the task.
func newTask(spec TaskSpec, index int) *Task {
	if spec.Deadline != nil {
		spec.Deadline = DeadlineOf(*spec.Deadline)
	}
	remaining := spec.Duration
	if remaining < 0 {
		remaining = 0
	}
	return &Task{
		TaskSpec:      spec,
		Remaining:     remaining,
		FirstDispatch: Unset,
		Completion:    Unset,
		index:         index,
	}
}

// Index returns the task's position in the template list.
func (t *Task) Index() int { return t.index }

// Consume runs the task for at most quantum units and returns the time used.
func (t *Task) Consume(quantum int64) int64 {
	exec := min(t.Remaining, quantum)
	t.Remaining -= exec
	return exec
}

// Executed returns the total time logged in Intervals.
func (t *Task) Executed() int64 {
	var sum int64
	for _, iv := range t.Intervals {
		sum += iv.Len()
	}
	return sum
}

// record appends a burst, merging it into the previous one when coalesce is
// set and the two are contiguous.
func (t *Task) record(start, end int64, coalesce bool) {
	if n := len(t.Intervals); coalesce && n > 0 && t.Intervals[n-1].End == start {
		t.Intervals[n-1].End = end
		return
	}
	t.Intervals = append(t.Intervals, Interval{Start: start, End: end})
}

// finish stamps completion and evaluates the deadline. It is a no-op on an
// already completed task.
func (t *Task) finish(at int64) {
	if t.Completed {
		return
	}
	t.Completed = true
	t.Completion = at
	if t.Deadline != nil {
		t.DeadlineMissed = at-t.Arrival > *t.Deadline
	}
}

func (t *Task) String() string {
	return fmt.Sprintf("%s(dur=%d prio=%d arr=%d rem=%d)", t.Name, t.Duration, t.Priority, t.Arrival, t.Remaining)
}
