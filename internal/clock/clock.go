// Package clock abstracts time for the engagement loop so timing behaviour
// can be driven by hand in tests.
package clock

import "time"

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
	// AfterFunc calls f once, on its own goroutine, after d elapses.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a pending AfterFunc call.
type Timer interface {
	// Stop prevents the call. It reports false if the call already ran or
	// was already stopped.
	Stop() bool
}

type realClock struct{}

// Real returns the wall clock.
func Real() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
