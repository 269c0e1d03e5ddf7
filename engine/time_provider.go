package engine

import "time"

// TimeProvider is the time source for timers and the tick loop
// Swapped for MockTimeProvider in tests
type TimeProvider interface {
	Now() time.Time
}

// MonotonicTimeProvider provides the real system time with monotonic clock readings
type MonotonicTimeProvider struct{}

// NewMonotonicTimeProvider creates a new monotonic time provider
func NewMonotonicTimeProvider() *MonotonicTimeProvider {
	return &MonotonicTimeProvider{}
}

// Now returns the current time with monotonic clock reading
func (p *MonotonicTimeProvider) Now() time.Time {
	return time.Now()
}

// Timer measures elapsed time from the moment it was armed
// It is never restarted; arm a new Timer instead
type Timer struct {
	clock   TimeProvider
	armedAt time.Time
}

// ArmTimer starts a timer at the provider's current time
func ArmTimer(clock TimeProvider) *Timer {
	return &Timer{clock: clock, armedAt: clock.Now()}
}

// Elapsed returns time since arming
func (t *Timer) Elapsed() time.Duration {
	return t.clock.Now().Sub(t.armedAt)
}

// Exceeded reports whether elapsed time is strictly greater than deadline
func (t *Timer) Exceeded(deadline time.Duration) bool {
	return t.Elapsed() > deadline
}
