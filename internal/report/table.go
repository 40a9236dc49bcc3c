package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"tasksim/internal/sched"
)

// WriteTable prints a human readable summary of one run.
func WriteTable(w io.Writer, snap sched.Snapshot) error {
	if len(snap.Tasks) == 0 {
		_, err := fmt.Fprintln(w, "No tasks to report.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Policy: %s\n\n", snap.Policy)
	fmt.Fprintln(tw, "TASK\tARRIVAL\tCOMPLETION\tTURNAROUND\tPRIORITY\tDEADLINE\tMISSED\tBURSTS")
	for _, t := range snap.Tasks {
		rec := TaskRecord(t)
		fmt.Fprintf(tw, "%s\t%s\n", strings.Join(rec, "\t"), bursts(t.Intervals))
	}
	fmt.Fprintln(tw)
	fmt.Fprintf(tw, "Average turnaround:\t%s\n", AverageTurnaround(snap))
	fmt.Fprintf(tw, "Total overhead:\t%s\n", FormatFloat(snap.TotalOverhead))
	fmt.Fprintf(tw, "Deadline misses:\t%d\n", snap.DeadlineMisses)
	if len(snap.Incomplete) > 0 {
		fmt.Fprintf(tw, "Incomplete:\t%s\n", strings.Join(snap.Incomplete, ", "))
	}
	return tw.Flush()
}

// WriteComparison prints one summary row per run.
func WriteComparison(w io.Writer, snaps []sched.Snapshot) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "POLICY\tAVG TURNAROUND\tAVG WAITING\tAVG RESPONSE\tOVERHEAD\tMISSES\tMAKESPAN")
	for _, s := range snaps {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%d\n",
			s.Policy,
			AverageTurnaround(s),
			FormatFloat(s.AvgWaiting),
			FormatFloat(s.AvgResponse),
			FormatFloat(s.TotalOverhead),
			s.DeadlineMisses,
			s.Makespan,
		)
	}
	return tw.Flush()
}

// WriteJSON encodes v with indentation.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func bursts(ivs []sched.Interval) string {
	parts := make([]string, len(ivs))
	for i, iv := range ivs {
		parts[i] = fmt.Sprintf("[%d,%d)", iv.Start, iv.End)
	}
	return strings.Join(parts, " ")
}
