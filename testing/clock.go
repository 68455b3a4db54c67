package testing

import (
	"sync"
	"time"

	"github.com/ElCzar/secchub-planning/types"
)

// ManualClock implements types.Clock with a manually advanced time.
//
// Cooldown comparisons in the engine become deterministic: tests advance the
// clock instead of sleeping. Safe for concurrent use.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

var _ types.Clock = (*ManualClock)(nil)

// NewManualClock creates a clock pinned to the given time.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the clock's current time.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

// Set pins the clock to the given time.
func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = t
}
