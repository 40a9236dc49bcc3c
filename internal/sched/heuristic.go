package sched

import (
	"math"
	"slices"
)

// Features describe one ready task at a dispatch point.
// Deadline and Slack are +Inf for tasks without a deadline.
type Features struct {
	Duration float64 `json:"duration"`
	Priority float64 `json:"priority"`
	Arrival  float64 `json:"arrival"`
	Deadline float64 `json:"deadline"` // absolute
	Clock    float64 `json:"clock"`
	Slack    float64 `json:"slack"` // deadline - clock - duration
	Wait     float64 `json:"wait"`  // clock - arrival
}

// FeaturesOf builds the feature vector of t at clock.
func FeaturesOf(t *Task, clock int64) Features {
	f := Features{
		Duration: float64(t.Duration),
		Priority: float64(t.Priority),
		Arrival:  float64(t.Arrival),
		Deadline: math.Inf(1),
		Clock:    float64(clock),
		Slack:    math.Inf(1),
		Wait:     float64(clock - t.Arrival),
	}
	if at, ok := t.AbsoluteDeadline(); ok {
		f.Deadline = float64(at)
		f.Slack = float64(at - clock - t.Duration)
	}
	return f
}

// Oracle scores a candidate; the heuristic policy runs the highest score.
// Implementations must be pure: the same features give the same score.
type Oracle interface {
	Score(f Features) float64
}

// OracleFunc adapts a plain function to Oracle.
type OracleFunc func(f Features) float64

// Score calls fn(f).
func (fn OracleFunc) Score(f Features) float64 { return fn(f) }

type heuristicSelector struct {
	ready   []*Task // template order
	oracle  Oracle
	quantum int64 // 0 runs the chosen task to completion
}

func newHeuristicSelector(oracle Oracle, quantum int64) *heuristicSelector {
	return &heuristicSelector{oracle: oracle, quantum: quantum}
}

func (h *heuristicSelector) Admit(ts []*Task) {
	if len(ts) == 0 {
		return
	}
	h.ready = append(h.ready, ts...)
	slices.SortFunc(h.ready, func(a, b *Task) int { return a.index - b.index })
}

// SelectNext returns the arg-max of the oracle. Ties keep the earlier task in
// template order; NaN scores lose to everything.
func (h *heuristicSelector) SelectNext(clock int64) (*Task, int64, bool) {
	var (
		best      *Task
		bestScore = math.Inf(-1)
	)
	for _, t := range h.ready {
		score := h.oracle.Score(FeaturesOf(t, clock))
		if math.IsNaN(score) {
			score = math.Inf(-1)
		}
		if best == nil || score > bestScore {
			best, bestScore = t, score
		}
	}
	if best == nil {
		return nil, 0, false
	}
	q := best.Remaining
	if h.quantum > 0 {
		q = h.quantum
	}
	return best, q, true
}

func (h *heuristicSelector) Settle(t *Task) {
	if !t.Completed {
		return
	}
	h.ready = slices.DeleteFunc(h.ready, func(x *Task) bool { return x == t })
}
