// internal/sched/event.go

package sched

import "fmt"

// StatusKind represents the type of scheduler event
type StatusKind int

const (
	StatusIdle StatusKind = iota
	StatusEnqueue
	StatusDispatch
	StatusPreempt
	StatusFinish
)

// StatusEvent is recorded on every key action of a run, stamped in logical time.
type StatusEvent struct {
	Time      int64      `json:"time"`
	Kind      StatusKind `json:"kind"`
	Task      string     `json:"task,omitempty"`
	Ran       int64      `json:"ran,omitempty"`       // units executed by the dispatch
	Remaining int64      `json:"remaining,omitempty"` // remaining work after the action
}

func (sk StatusKind) String() string {
	switch sk {
	case StatusIdle:
		return "Idle"
	case StatusEnqueue:
		return "Enqueued"
	case StatusDispatch:
		return "Dispatch"
	case StatusPreempt:
		return "Preempt"
	case StatusFinish:
		return "Finish"
	default:
		return "Unknown"
	}
}

// MarshalText lets the kind appear by name in JSON output.
func (sk StatusKind) MarshalText() ([]byte, error) {
	return []byte(sk.String()), nil
}

// UnmarshalText parses a kind written by MarshalText.
func (sk *StatusKind) UnmarshalText(b []byte) error {
	for k := StatusIdle; k <= StatusFinish; k++ {
		if k.String() == string(b) {
			*sk = k
			return nil
		}
	}
	return fmt.Errorf("unknown event kind %q", b)
}
