package testutil

import (
	"sync"
	"time"
)

// Clock is a manually advanced time source safe for concurrent use.
// Pass clock.Now wherever a func() time.Time is accepted.
//
//	clk := testutil.NewClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
//	clk.Advance(time.Hour)
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock creates a clock frozen at start.
func NewClock(start time.Time) *Clock { return &Clock{now: start} }

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward (or backward for negative d).
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set jumps the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
