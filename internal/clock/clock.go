// Package clock abstracts the time operations used by expiry timers so tests
// can drive them deterministically.
package clock

import "time"

// Clock abstracts time operations for testability. Production code
// uses Real(); tests use Fake() and advance time explicitly.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// AfterFunc waits for duration d, then calls f. The returned Timer
	// can cancel the pending call with Stop.
	AfterFunc(d time.Duration, f func()) *Timer
}

// Timer represents a scheduled callback.
type Timer struct {
	stopFunc func() bool
}

// Stop prevents the Timer from firing. Returns true if the call stops
// the timer, false if the timer has already fired or been stopped.
func (t *Timer) Stop() bool { return t.stopFunc() }

// Real returns a Clock backed by the time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) *Timer {
	t := time.AfterFunc(d, f)
	return &Timer{stopFunc: t.Stop}
}
