package sandbox

import (
	"sync"
	"time"
)

// Clock reports time elapsed since the sandbox started. It must never go
// backwards.
type Clock interface {
	Elapsed() time.Duration
}

// SystemClock reads the monotonic wall clock.
type SystemClock struct {
	start time.Time
}

func NewSystemClock() *SystemClock { return &SystemClock{start: time.Now()} }

func (c *SystemClock) Elapsed() time.Duration { return time.Since(c.start) }

// ManualClock only moves when told to. Headless runs and tests use it to get
// exactly one fixed step per frame.
type ManualClock struct {
	mu  sync.Mutex
	now time.Duration
}

func NewManualClock() *ManualClock { return &ManualClock{} }

func (c *ManualClock) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward. Negative durations are ignored.
func (c *ManualClock) Advance(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	c.now += d
	c.mu.Unlock()
}
