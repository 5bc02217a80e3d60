package digest

import "sync/atomic"

// Clock is a monotonic logical clock stamping each generation request.
// Only the generation holding the latest stamp may commit.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the latest issued sequence number.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
