package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock is a package-level time source so tests can freeze time via SetClock.
// Production code uses the real clock; tests inject a fake for deterministic
// forecast dates.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source for forecast building. Pass nil to reset to
// real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Now returns the current instant from the package clock.
func Now() time.Time {
	return clock.Now()
}
