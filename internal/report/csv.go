// Package report renders simulation results as CSV, text tables and JSON.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"tasksim/internal/sched"
)

// TaskHeader is the column layout of the per-task export.
var TaskHeader = []string{"name", "arrival", "completion", "turnaround", "priority", "deadline", "deadline_missed"}

// WriteCSV writes one row per task followed by a blank line and the summary
// block (average turnaround, total overhead, deadline misses).
func WriteCSV(w io.Writer, snap sched.Snapshot) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(TaskHeader); err != nil {
		return err
	}
	for _, t := range snap.Tasks {
		if err := cw.Write(TaskRecord(t)); err != nil {
			return err
		}
	}

	// summary block
	summary := [][]string{
		{},
		{"average_turnaround", AverageTurnaround(snap)},
		{"total_overhead", FormatFloat(snap.TotalOverhead)},
		{"deadline_misses", strconv.Itoa(snap.DeadlineMisses)},
	}
	if err := cw.WriteAll(summary); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return cw.Error()
}

// TaskRecord renders one task row.
func TaskRecord(t sched.TaskReport) []string {
	completion, turnaround := "incomplete", "N/A"
	if t.Completion != nil {
		completion = strconv.FormatInt(*t.Completion, 10)
	}
	if t.Turnaround != nil {
		turnaround = strconv.FormatInt(*t.Turnaround, 10)
	}
	deadline := "N/A"
	if t.Deadline != nil {
		deadline = strconv.FormatInt(*t.Deadline, 10)
	}
	missed := "no"
	if t.DeadlineMissed {
		missed = "yes"
	}
	return []string{
		t.Name,
		strconv.FormatInt(t.Arrival, 10),
		completion,
		turnaround,
		strconv.Itoa(t.Priority),
		deadline,
		missed,
	}
}

// AverageTurnaround formats the average, or "N/A" when nothing completed.
func AverageTurnaround(snap sched.Snapshot) string {
	if !snap.HasData {
		return "N/A"
	}
	return FormatFloat(snap.AvgTurnaround)
}

// FormatFloat prints v with two decimals.
func FormatFloat(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

// WriteTrace writes the event log of a run, one row per event.
func WriteTrace(w io.Writer, events []sched.StatusEvent) error {
	cw := csv.NewWriter(w)

	// write header
	if err := cw.Write([]string{"tick", "event", "task", "ran", "remaining"}); err != nil {
		return err
	}
	for _, ev := range events {
		rec := []string{
			strconv.FormatInt(ev.Time, 10),
			ev.Kind.String(),
			ev.Task,
			strconv.FormatInt(ev.Ran, 10),
			strconv.FormatInt(ev.Remaining, 10),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
