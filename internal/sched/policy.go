// internal/sched/policy.go

package sched

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidQuantum is returned when a quantum would prevent progress.
	ErrInvalidQuantum = errors.New("quantum must be positive")
	// ErrNoOracle is returned when the heuristic policy has nothing to score with.
	ErrNoOracle = errors.New("heuristic policy requires an oracle")
	// ErrUnknownPolicy is returned for names outside the supported set.
	ErrUnknownPolicy = errors.New("unknown policy")
)

// Kind enumerates the closed set of scheduling policies.
type Kind int

const (
	FIFO Kind = iota
	SJF
	Priority
	RoundRobin
	DynamicRoundRobin
	EDF
	SRTF
	Heuristic
)

var allKinds = []Kind{FIFO, SJF, Priority, RoundRobin, DynamicRoundRobin, EDF, SRTF, Heuristic}

// Kinds returns every supported policy in a stable order.
func Kinds() []Kind { return append([]Kind(nil), allKinds...) }

func (k Kind) String() string {
	switch k {
	case FIFO:
		return "fifo"
	case SJF:
		return "sjf"
	case Priority:
		return "priority"
	case RoundRobin:
		return "rr"
	case DynamicRoundRobin:
		return "rr-dynamic"
	case EDF:
		return "edf"
	case SRTF:
		return "srtf"
	case Heuristic:
		return "heuristic"
	default:
		return "unknown"
	}
}

// Title is the human readable policy name.
func (k Kind) Title() string {
	switch k {
	case FIFO:
		return "First In First Out"
	case SJF:
		return "Shortest Job First"
	case Priority:
		return "Priority"
	case RoundRobin:
		return "Round Robin"
	case DynamicRoundRobin:
		return "Dynamic-Quantum Round Robin"
	case EDF:
		return "Earliest Deadline First"
	case SRTF:
		return "Shortest Remaining Time First"
	case Heuristic:
		return "Oracle Heuristic"
	default:
		return "Unknown"
	}
}

// ParseKind maps a policy name to its Kind. Matching ignores case, and "_"
// is accepted in place of "-".
func ParseKind(name string) (Kind, error) {
	n := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	switch n {
	case "round-robin", "roundrobin":
		return RoundRobin, nil
	case "rr-dinamico", "dqrr", "dynamic-rr":
		return DynamicRoundRobin, nil
	case "ml", "oracle":
		return Heuristic, nil
	case "prio":
		return Priority, nil
	}
	for _, k := range allKinds {
		if k.String() == n {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
}

// Accounting says when a policy charges context-switch overhead.
type Accounting int

const (
	// PerDispatch charges once for every dispatch decision.
	PerDispatch Accounting = iota
	// PerSwitch charges only when the running task changes, and merges
	// back-to-back bursts of the same task into one interval.
	PerSwitch
)

// Options carries policy-specific configuration.
type Options struct {
	Quantum     int64  // RR, EDF; optional for Heuristic (0 = run to completion)
	BaseQuantum int64  // Dynamic RR
	Oracle      Oracle // Heuristic
}

// Policy is a validated policy choice. It holds no run state, so one Policy
// can drive any number of runs.
type Policy struct {
	kind        Kind
	quantum     int64
	baseQuantum int64
	oracle      Oracle
}

// NewPolicy validates opts for kind.
func NewPolicy(kind Kind, opts Options) (Policy, error) {
	p := Policy{kind: kind}
	switch kind {
	case FIFO, SJF, Priority, SRTF:
	case RoundRobin, EDF:
		if opts.Quantum <= 0 {
			return Policy{}, fmt.Errorf("%s: %w (got %d)", kind, ErrInvalidQuantum, opts.Quantum)
		}
		p.quantum = opts.Quantum
	case DynamicRoundRobin:
		if opts.BaseQuantum <= 0 {
			return Policy{}, fmt.Errorf("%s: base %w (got %d)", kind, ErrInvalidQuantum, opts.BaseQuantum)
		}
		p.baseQuantum = opts.BaseQuantum
	case Heuristic:
		if opts.Quantum < 0 {
			return Policy{}, fmt.Errorf("%s: %w (got %d)", kind, ErrInvalidQuantum, opts.Quantum)
		}
		if opts.Oracle == nil {
			return Policy{}, ErrNoOracle
		}
		p.quantum = opts.Quantum
		p.oracle = opts.Oracle
	default:
		return Policy{}, fmt.Errorf("%w: %d", ErrUnknownPolicy, int(kind))
	}
	return p, nil
}

// Kind returns the policy variant.
func (p Policy) Kind() Kind { return p.kind }

// Quantum returns the configured quantum, 0 when the policy has none.
func (p Policy) Quantum() int64 { return p.quantum }

// BaseQuantum returns the dynamic round-robin base quantum.
func (p Policy) BaseQuantum() int64 { return p.baseQuantum }

// Oracle returns the heuristic policy's oracle, nil for every other kind.
func (p Policy) Oracle() Oracle { return p.oracle }

// IgnoresArrivals reports whether the policy treats every task as available
// from the start. FIFO, SJF and Priority fix their order once and run each
// task as soon as its predecessor finishes, whatever its arrival time.
func (p Policy) IgnoresArrivals() bool {
	switch p.kind {
	case FIFO, SJF, Priority:
		return true
	default:
		return false
	}
}

// Accounting reports how the policy charges overhead.
func (p Policy) Accounting() Accounting {
	if p.kind == SRTF {
		return PerSwitch
	}
	return PerDispatch
}

// Label is a short description including the quantum, e.g. "rr(q=2)".
func (p Policy) Label() string {
	switch {
	case p.kind == DynamicRoundRobin:
		return fmt.Sprintf("%s(base=%d)", p.kind, p.baseQuantum)
	case p.quantum > 0:
		return fmt.Sprintf("%s(q=%d)", p.kind, p.quantum)
	default:
		return p.kind.String()
	}
}

// selector is the per-run decision state of a policy: which ready task runs
// next and for how long.
type selector interface {
	// Admit adds newly arrived tasks, in arrival order.
	Admit(ts []*Task)
	// SelectNext picks a task and its quantum. ok is false when nothing is ready.
	SelectNext(clock int64) (t *Task, quantum int64, ok bool)
	// Settle is called after t's burst and after any arrivals it uncovered.
	Settle(t *Task)
}

// selector builds fresh decision state over s.
func (p Policy) selector(s *Session) selector {
	switch p.kind {
	case FIFO:
		return newOrderedSelector(s.Tasks(), nil)
	case SJF:
		return newOrderedSelector(s.Tasks(), byDuration)
	case Priority:
		return newOrderedSelector(s.Tasks(), byPriority)
	case RoundRobin:
		q := p.quantum
		return newRoundRobinSelector(func(*Task) int64 { return q })
	case DynamicRoundRobin:
		return newRoundRobinSelector(dynamicQuantum(s.Tasks(), p.baseQuantum))
	case EDF:
		return newEDFSelector(p.quantum)
	case SRTF:
		return newSRTFSelector()
	case Heuristic:
		return newHeuristicSelector(p.oracle, p.quantum)
	default:
		panic(fmt.Sprintf("sched: policy kind %d has no selector", int(p.kind)))
	}
}
