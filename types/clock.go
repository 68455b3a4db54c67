package types

import "time"

// Clock abstracts "now" for cooldown comparisons.
//
// The engine stamps rows with the time of their last assignment and
// suppresses repeated assignments inside a cooldown window. Injecting the
// clock keeps that comparison deterministic in tests; production code uses
// SystemClock.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// SystemClock implements Clock using the system wall clock.
type SystemClock struct{}

// Compile-time assertion that SystemClock implements Clock.
var _ Clock = SystemClock{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }
