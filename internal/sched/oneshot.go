package sched

import (
	"cmp"
	"slices"
)

// orderedSelector serves FIFO, SJF and Priority: one ordering built up front,
// each task run to completion in a single burst.
type orderedSelector struct {
	order []*Task
	pos   int
}

func newOrderedSelector(tasks []*Task, less func(a, b *Task) int) *orderedSelector {
	order := slices.Clone(tasks)
	if less != nil {
		slices.SortStableFunc(order, less)
	}
	return &orderedSelector{order: order}
}

func byDuration(a, b *Task) int { return cmp.Compare(a.Duration, b.Duration) }

func byPriority(a, b *Task) int { return cmp.Compare(a.Priority, b.Priority) }

// Admit is a no-op: the order was fixed when the run began.
func (o *orderedSelector) Admit([]*Task) {}

func (o *orderedSelector) SelectNext(int64) (*Task, int64, bool) {
	for o.pos < len(o.order) && o.order[o.pos].Completed {
		o.pos++
	}
	if o.pos >= len(o.order) {
		return nil, 0, false
	}
	t := o.order[o.pos]
	return t, t.Remaining, true
}

func (o *orderedSelector) Settle(t *Task) {
	if t.Completed && o.pos < len(o.order) && o.order[o.pos] == t {
		o.pos++
	}
}
