package sched

// edfSelector dispatches the ready task with the earliest absolute deadline.
// The key does not depend on progress, so a task stays put in the tree until
// it completes.
type edfSelector struct {
	ready   *readyTree
	quantum int64
}

func newEDFSelector(quantum int64) *edfSelector {
	return &edfSelector{ready: newReadyTree(absoluteDeadline), quantum: quantum}
}

func (e *edfSelector) Admit(ts []*Task) {
	for _, t := range ts {
		e.ready.put(t)
	}
}

func (e *edfSelector) SelectNext(int64) (*Task, int64, bool) {
	t, ok := e.ready.first()
	if !ok {
		return nil, 0, false
	}
	return t, e.quantum, true
}

func (e *edfSelector) Settle(t *Task) {
	if t.Completed {
		e.ready.remove(t)
	}
}
