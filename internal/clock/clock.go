// Package clock supplies the time a reorganization run sees.
//
// Two things read it: the engine, which stamps StartedAt and FinishedAt on
// every result, and the backup manager, which suffixes a backup directory
// with Stamp when the default location is already taken. Tests pin both with
// a FakeClock so result timestamps and backup names are predictable.
package clock

import "time"

// StampLayout is the layout used for backup directory suffixes. It sorts
// lexically and contains no characters that are awkward in file names.
const StampLayout = "20060102-150405"

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// Stamp formats the clock's current time with StampLayout.
func Stamp(c Clock) string {
	return c.Now().Format(StampLayout)
}

// RealClock reads the system time.
type RealClock struct{}

func (c *RealClock) Now() time.Time {
	return time.Now()
}

// FakeClock stays at a fixed instant until advanced.
type FakeClock struct {
	current time.Time
}

// NewFakeClock creates a FakeClock stopped at t.
func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{current: t}
}

func (c *FakeClock) Now() time.Time {
	return c.current
}

// Advance moves the clock forward, e.g. between two runs that would
// otherwise pick the same backup stamp.
func (c *FakeClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}
