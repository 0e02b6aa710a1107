package service

import "time"

// Clock returns the current time. Services take it as a dependency so tests
// can pin the exam window.
type Clock func() time.Time

func SystemClock() Clock {
	return func() time.Time { return time.Now().UTC() }
}
