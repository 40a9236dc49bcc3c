package sched

// TaskReport is the outcome of one task. Completion, Turnaround, Response and
// Waiting are nil for a task that never completed.
type TaskReport struct {
	Name           string     `json:"name"`
	Duration       int64      `json:"duration"`
	Priority       int        `json:"priority"`
	Arrival        int64      `json:"arrival"`
	Deadline       *int64     `json:"deadline,omitempty"`
	Completion     *int64     `json:"completion"`
	Turnaround     *int64     `json:"turnaround"`
	Response       *int64     `json:"response"` // first dispatch - arrival
	Waiting        *int64     `json:"waiting"`  // turnaround - executed time
	Intervals      []Interval `json:"intervals"`
	DeadlineMissed bool       `json:"deadline_missed"`
}

// Snapshot aggregates the metrics of a finished run.
type Snapshot struct {
	Policy         string       `json:"policy"`
	Tasks          []TaskReport `json:"tasks"` // template order
	CompletionSeq  []string     `json:"completion_order"`
	Incomplete     []string     `json:"incomplete,omitempty"`
	HasData        bool         `json:"has_data"` // false when no task completed
	AvgTurnaround  float64      `json:"avg_turnaround"`
	AvgWaiting     float64      `json:"avg_waiting"`
	AvgResponse    float64      `json:"avg_response"`
	TotalOverhead  float64      `json:"total_overhead"`
	DeadlineMisses int          `json:"deadline_misses"`
	Makespan       int64        `json:"makespan"`
}

// Snapshot computes the metrics of the session as it stands.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Tasks:          make([]TaskReport, 0, len(s.tasks)),
		TotalOverhead:  s.overhead,
		DeadlineMisses: s.misses,
		Makespan:       s.clock.Now(),
	}

	var turnaround, waiting, response int64
	for _, t := range s.tasks {
		rep := TaskReport{
			Name:           t.Name,
			Duration:       t.Duration,
			Priority:       t.Priority,
			Arrival:        t.Arrival,
			Intervals:      append([]Interval(nil), t.Intervals...),
			DeadlineMissed: t.DeadlineMissed,
		}
		if t.Deadline != nil {
			rep.Deadline = DeadlineOf(*t.Deadline)
		}
		if !t.Completed {
			snap.Incomplete = append(snap.Incomplete, t.Name)
			snap.Tasks = append(snap.Tasks, rep)
			continue
		}

		ta := t.Completion - t.Arrival
		wt := ta - t.Executed()
		rt := int64(0)
		if t.FirstDispatch != Unset {
			rt = t.FirstDispatch - t.Arrival
		}
		rep.Completion = ptr(t.Completion)
		rep.Turnaround = ptr(ta)
		rep.Waiting = ptr(wt)
		rep.Response = ptr(rt)
		turnaround += ta
		waiting += wt
		response += rt
		snap.Tasks = append(snap.Tasks, rep)
	}

	for _, t := range s.completed {
		snap.CompletionSeq = append(snap.CompletionSeq, t.Name)
	}
	if n := len(s.completed); n > 0 {
		snap.HasData = true
		snap.AvgTurnaround = float64(turnaround) / float64(n)
		snap.AvgWaiting = float64(waiting) / float64(n)
		snap.AvgResponse = float64(response) / float64(n)
	}
	return snap
}

func ptr[T any](v T) *T { return &v }
