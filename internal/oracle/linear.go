package oracle

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"tasksim/internal/sched"
)

// Linear scores a task as bias + sum(weight * feature).
type Linear struct {
	Bias     float64
	Duration float64
	Priority float64
	Arrival  float64
	Deadline float64
	Clock    float64
	Slack    float64
	Wait     float64
}

// NewLinear builds a Linear from a name -> weight map. Recognized names are
// the feature names plus "bias".
func NewLinear(weights map[string]float64) (*Linear, error) {
	l := &Linear{}
	fields := map[string]*float64{
		"bias":     &l.Bias,
		"duration": &l.Duration,
		"priority": &l.Priority,
		"arrival":  &l.Arrival,
		"deadline": &l.Deadline,
		"clock":    &l.Clock,
		"slack":    &l.Slack,
		"wait":     &l.Wait,
	}
	var unknown []string
	for name, w := range weights {
		p, ok := fields[strings.ToLower(name)]
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		*p = w
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("unknown oracle weights: %s", strings.Join(unknown, ", "))
	}
	return l, nil
}

// Score implements sched.Oracle. Zero weights are skipped so an infinite
// feature does not turn the sum into NaN.
func (l *Linear) Score(f sched.Features) float64 {
	score := l.Bias
	for _, term := range [...][2]float64{
		{l.Duration, f.Duration},
		{l.Priority, f.Priority},
		{l.Arrival, f.Arrival},
		{l.Deadline, f.Deadline},
		{l.Clock, f.Clock},
		{l.Slack, f.Slack},
		{l.Wait, f.Wait},
	} {
		if term[0] != 0 {
			score += term[0] * term[1]
		}
	}
	return score
}

// ShortestJob prefers the shortest task. It is the default oracle when no
// script or weights are configured.
func ShortestJob() sched.Oracle {
	return sched.OracleFunc(func(f sched.Features) float64 { return -f.Duration })
}

// FromConfig builds the oracle described by cfg.
func FromConfig(cfg sched.HeuristicConfig) (sched.Oracle, error) {
	switch {
	case cfg.Script != "":
		return NewScript(cfg.Script)
	case cfg.ScriptFile != "":
		src, err := os.ReadFile(cfg.ScriptFile)
		if err != nil {
			return nil, fmt.Errorf("read oracle script: %w", err)
		}
		return NewScript(string(src))
	case len(cfg.Weights) > 0:
		return NewLinear(cfg.Weights)
	default:
		return ShortestJob(), nil
	}
}
