package impulse

import (
	"time"
)

// Clock measures wall time between calls to Tick.
type Clock struct {
	Time time.Time
	Dt   time.Duration

	now func() time.Time
}

func NewClock() *Clock {
	return newClockFunc(time.Now)
}

func newClockFunc(now func() time.Time) *Clock {
	return &Clock{
		Time: now(),
		now:  now,
	}
}

// Tick records the time elapsed since the previous tick and returns it.
func (c *Clock) Tick() time.Duration {
	now := c.now()

	c.Dt = now.Sub(c.Time)
	c.Time = now
	return c.Dt
}
