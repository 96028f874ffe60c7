package clock

import "time"

// Clock provides time operations that can be mocked for testing.
// Event timestamps come from here, so tests can assert exact times.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the system clock
type SystemClock struct{}

// New creates a new SystemClock
func New() *SystemClock {
	return &SystemClock{}
}

// Now returns the current time
func (c *SystemClock) Now() time.Time {
	return time.Now()
}
