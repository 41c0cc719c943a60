package scene

import "time"

// Clock is the time source sampled once per tick.
type Clock interface {
	// Now returns the time elapsed since an arbitrary fixed origin.
	Now() time.Duration
}

// SystemClock reads the process monotonic clock. Its resolution is whatever
// the platform's monotonic source provides (nanoseconds on Linux and macOS,
// typically 100ns on Windows); values are immune to wall-clock adjustments.
type SystemClock struct {
	origin time.Time
}

// NewSystemClock creates a clock whose origin is the moment of the call.
func NewSystemClock() *SystemClock {
	return &SystemClock{origin: time.Now()}
}

// Now returns the monotonic time since the clock was created.
func (c *SystemClock) Now() time.Duration {
	return time.Since(c.origin)
}

// ManualClock only moves when told to. Used by tests and headless runs.
type ManualClock struct {
	now time.Duration
}

// Now returns the accumulated time.
func (c *ManualClock) Now() time.Duration {
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.now += d
}

// Seconds converts a duration to the float32 seconds pushed into shaders.
func Seconds(d time.Duration) float32 {
	return float32(d.Seconds())
}
