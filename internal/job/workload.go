// Package job loads, generates and serializes task workloads.
package job

import (
	"fmt"
	"math/rand/v2"
	"os"

	yaml "github.com/goccy/go-yaml"

	"tasksim/internal/sched"
)

// Workload mirrors a tasks.yml file.
type Workload struct {
	Tasks []sched.TaskSpec `yaml:"tasks" json:"tasks"`
}

// Load reads a workload file.
func Load(path string) ([]sched.TaskSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workload: %w", err)
	}
	specs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return specs, nil
}

// Parse decodes a workload document.
func Parse(data []byte) ([]sched.TaskSpec, error) {
	var w Workload
	if err := yaml.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("parse workload: %w", err)
	}
	return w.Tasks, nil
}

// Marshal encodes specs as a workload document.
func Marshal(specs []sched.TaskSpec) ([]byte, error) {
	return yaml.Marshal(Workload{Tasks: specs})
}

// Sample is the three-task workload used throughout the docs.
func Sample() []sched.TaskSpec {
	return []sched.TaskSpec{
		{Name: "A", Duration: 4, Priority: 2, Arrival: 0, Deadline: sched.DeadlineOf(15)},
		{Name: "B", Duration: 3, Priority: 1, Arrival: 1, Deadline: sched.DeadlineOf(10)},
		{Name: "C", Duration: 6, Priority: 3, Arrival: 2, Deadline: sched.DeadlineOf(20)},
	}
}

var vehicleTasks = []string{
	"Obstacle Detection",
	"Route Planning",
	"Speed Keeping",
	"Infrastructure Link",
	"Sensor Monitoring",
	"Image Analysis",
	"Stability Control",
	"Map Update",
	"Trajectory Adjustment",
	"Energy Management",
}

// Generate builds n tasks arriving every 2 units with durations 3..8,
// priorities 1..5 and a deadline 5..20 units of slack past the duration.
// The same seed always yields the same workload.
func Generate(n int, seed uint64) []sched.TaskSpec {
	rng := rand.New(rand.NewPCG(seed, seed))
	specs := make([]sched.TaskSpec, 0, max(n, 0))
	for i := 0; i < n; i++ {
		name := vehicleTasks[i%len(vehicleTasks)]
		if round := i / len(vehicleTasks); round > 0 {
			name = fmt.Sprintf("%s #%d", name, round+1)
		}
		duration := int64(3 + rng.IntN(6))
		slack := int64(5 + rng.IntN(16))
		specs = append(specs, sched.TaskSpec{
			Name:     name,
			Duration: duration,
			Priority: 1 + rng.IntN(5),
			Arrival:  int64(i * 2),
			Deadline: sched.DeadlineOf(duration + slack),
		})
	}
	return specs
}
