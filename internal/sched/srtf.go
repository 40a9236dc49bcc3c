package sched

// srtfTick is the granularity at which SRTF re-evaluates the ready set.
const srtfTick int64 = 1

// srtfSelector picks the smallest remaining time every tick. The running
// task is taken out of the tree while it runs and put back under its new
// remaining time, the same remove/update/reinsert the key change requires.
type srtfSelector struct {
	ready *readyTree
}

func newSRTFSelector() *srtfSelector {
	return &srtfSelector{ready: newReadyTree(remainingTime)}
}

func (s *srtfSelector) Admit(ts []*Task) {
	for _, t := range ts {
		s.ready.put(t)
	}
}

func (s *srtfSelector) SelectNext(int64) (*Task, int64, bool) {
	t, ok := s.ready.pop()
	if !ok {
		return nil, 0, false
	}
	return t, srtfTick, true
}

func (s *srtfSelector) Settle(t *Task) {
	if !t.Completed {
		s.ready.put(t)
	}
}
