// internal/sched/clock.go

package sched

// LogicalClock counts simulated time units. It never waits on real time:
// advancing it is pure bookkeeping, so runs are instantaneous and replayable.
type LogicalClock struct {
	now int64
}

// Now returns the current simulated time.
func (c *LogicalClock) Now() int64 { return c.now }

// Advance moves the clock forward by d units. Negative values are ignored.
func (c *LogicalClock) Advance(d int64) int64 {
	if d > 0 {
		c.now += d
	}
	return c.now
}

// AdvanceTo jumps the clock to t if t lies in the future.
func (c *LogicalClock) AdvanceTo(t int64) int64 {
	if t > c.now {
		c.now = t
	}
	return c.now
}
