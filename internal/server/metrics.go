package server

import (
	"github.com/prometheus/client_golang/prometheus"

	"tasksim/internal/sched"
)

type metrics struct {
	runs       *prometheus.CounterVec
	failures   prometheus.Counter
	misses     *prometheus.CounterVec
	overhead   *prometheus.CounterVec
	turnaround *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tasksim_simulations_total",
			Help: "Completed simulation runs by policy.",
		}, []string{"policy"}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tasksim_simulation_failures_total",
			Help: "Simulation requests rejected before running.",
		}),
		misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tasksim_deadline_misses_total",
			Help: "Deadline misses across runs by policy.",
		}, []string{"policy"}),
		overhead: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tasksim_overhead_total",
			Help: "Accumulated simulated overhead by policy.",
		}, []string{"policy"}),
		turnaround: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tasksim_average_turnaround",
			Help:    "Average turnaround of each run, in simulated time units.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}, []string{"policy"}),
	}
	reg.MustRegister(m.runs, m.failures, m.misses, m.overhead, m.turnaround)
	return m
}

func (m *metrics) observe(kind sched.Kind, snap sched.Snapshot) {
	label := kind.String()
	m.runs.WithLabelValues(label).Inc()
	m.misses.WithLabelValues(label).Add(float64(snap.DeadlineMisses))
	m.overhead.WithLabelValues(label).Add(snap.TotalOverhead)
	if snap.HasData {
		m.turnaround.WithLabelValues(label).Observe(snap.AvgTurnaround)
	}
}
