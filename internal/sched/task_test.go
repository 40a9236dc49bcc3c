package sched

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskConsume(t *testing.T) {
	task := newTask(TaskSpec{Name: "A", Duration: 5}, 0)

	assert.Equal(t, int64(2), task.Consume(2))
	assert.Equal(t, int64(3), task.Remaining)
	assert.Equal(t, int64(3), task.Consume(10), "consume is capped by remaining work")
	assert.Equal(t, int64(0), task.Remaining)
	assert.Equal(t, int64(0), task.Consume(1))
}

func TestNewTaskStartsUnset(t *testing.T) {
	task := newTask(TaskSpec{Name: "A", Duration: -3}, 4)

	assert.Equal(t, int64(0), task.Remaining, "negative duration clamps to no work")
	assert.Equal(t, Unset, task.FirstDispatch)
	assert.Equal(t, Unset, task.Completion)
	assert.Equal(t, 4, task.Index())
	assert.False(t, task.Completed)
}

func TestTaskRecordCoalesce(t *testing.T) {
	task := newTask(TaskSpec{Name: "A", Duration: 10}, 0)

	task.record(0, 1, true)
	task.record(1, 2, true)
	task.record(4, 5, true)
	require.Equal(t, []Interval{{0, 2}, {4, 5}}, task.Intervals)

	task.record(5, 6, false)
	assert.Equal(t, []Interval{{0, 2}, {4, 5}, {5, 6}}, task.Intervals)
	assert.Equal(t, int64(4), task.Executed())
}

func TestTaskFinishIsFinal(t *testing.T) {
	task := newTask(TaskSpec{Name: "A", Duration: 4, Arrival: 2, Deadline: DeadlineOf(3)}, 0)

	task.finish(6)
	assert.True(t, task.Completed)
	assert.Equal(t, int64(6), task.Completion)
	assert.True(t, task.DeadlineMissed, "turnaround 4 exceeds deadline 3")

	task.finish(100)
	assert.Equal(t, int64(6), task.Completion, "completion is never overwritten")
}

func TestTaskWithoutDeadlineNeverMisses(t *testing.T) {
	task := newTask(TaskSpec{Name: "A", Duration: 1}, 0)
	task.finish(1_000)
	assert.False(t, task.DeadlineMissed)

	_, ok := task.AbsoluteDeadline()
	assert.False(t, ok)
}

func TestTaskDeadlineBoundaryIsMet(t *testing.T) {
	task := newTask(TaskSpec{Name: "A", Duration: 4, Arrival: 1, Deadline: DeadlineOf(4)}, 0)
	task.finish(5)
	assert.False(t, task.DeadlineMissed, "turnaround equal to the deadline is on time")

	at, ok := task.AbsoluteDeadline()
	require.True(t, ok)
	assert.Equal(t, int64(5), at)
}
