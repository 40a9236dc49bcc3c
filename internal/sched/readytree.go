// internal/sched/readytree.go

package sched

import (
	"math"

	"github.com/emirpasic/gods/trees/redblacktree"
)

// nodeKey is used as a key in the red-black tree.
// Ordering is by primary, then arrival, then template index, so two distinct
// tasks never compare equal.
type nodeKey struct {
	primary int64
	arrival int64
	index   int
}

// nodeKey implements the Comparable interface for red-black tree ordering.
func compareNodeKeys(a, b any) int {
	ka, kb := a.(nodeKey), b.(nodeKey)
	switch {
	case ka.primary < kb.primary:
		return -1
	case ka.primary > kb.primary:
		return 1
	case ka.arrival < kb.arrival:
		return -1
	case ka.arrival > kb.arrival:
		return 1
	case ka.index < kb.index:
		return -1
	case ka.index > kb.index:
		return 1
	default:
		return 0
	}
}

// readyTree keeps the ready set ordered by a per-policy primary key.
type readyTree struct {
	rbt     *redblacktree.Tree
	primary func(t *Task) int64
}

func newReadyTree(primary func(t *Task) int64) *readyTree {
	return &readyTree{
		rbt:     redblacktree.NewWith(compareNodeKeys),
		primary: primary,
	}
}

func (r *readyTree) key(t *Task) nodeKey {
	return nodeKey{primary: r.primary(t), arrival: t.Arrival, index: t.index}
}

func (r *readyTree) put(t *Task) { r.rbt.Put(r.key(t), t) }

func (r *readyTree) remove(t *Task) { r.rbt.Remove(r.key(t)) }

// first returns the task with the smallest key without removing it.
func (r *readyTree) first() (*Task, bool) {
	node := r.rbt.Left()
	if node == nil {
		return nil, false
	}
	return node.Value.(*Task), true
}

// pop removes and returns the task with the smallest key.
func (r *readyTree) pop() (*Task, bool) {
	t, ok := r.first()
	if ok {
		r.remove(t)
	}
	return t, ok
}

// absoluteDeadline orders tasks without a deadline after every task with one.
func absoluteDeadline(t *Task) int64 {
	if at, ok := t.AbsoluteDeadline(); ok {
		return at
	}
	return math.MaxInt64
}

func remainingTime(t *Task) int64 { return t.Remaining }
