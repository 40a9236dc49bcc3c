package sched

import (
	"github.com/emirpasic/gods/queues/linkedlistqueue"
)

// roundRobinSelector cycles a FIFO ready queue. Arrivals are admitted before
// Settle requeues the preempted task, so they land ahead of it.
type roundRobinSelector struct {
	queue   *linkedlistqueue.Queue
	quantum func(t *Task) int64
}

func newRoundRobinSelector(quantum func(t *Task) int64) *roundRobinSelector {
	return &roundRobinSelector{
		queue:   linkedlistqueue.New(),
		quantum: quantum,
	}
}

func (r *roundRobinSelector) Admit(ts []*Task) {
	for _, t := range ts {
		r.queue.Enqueue(t)
	}
}

func (r *roundRobinSelector) SelectNext(int64) (*Task, int64, bool) {
	v, ok := r.queue.Dequeue()
	if !ok {
		return nil, 0, false
	}
	t := v.(*Task)
	return t, r.quantum(t), true
}

func (r *roundRobinSelector) Settle(t *Task) {
	if !t.Completed {
		r.queue.Enqueue(t)
	}
}

// dynamicQuantum gives more urgent (lower numbered) tasks a longer slice:
// base + (max priority in the template - task priority). The maximum is taken
// once, before the run starts.
func dynamicQuantum(tasks []*Task, base int64) func(t *Task) int64 {
	maxPrio := 0
	for i, t := range tasks {
		if i == 0 || t.Priority > maxPrio {
			maxPrio = t.Priority
		}
	}
	return func(t *Task) int64 {
		return base + int64(maxPrio-t.Priority)
	}
}
