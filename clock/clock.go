// Package clock abstracts time observation and delayed scheduling so that
// pacing primitives can be driven by the real clock in production and by a
// manual clock in tests.
package clock

import "time"

// Clock reads the current time.
type Clock interface {
	Now() time.Time
}

// Timer is a handle to a scheduled callback. Stop reports whether the
// callback was prevented from running; it returns false if the callback
// already fired or the timer was stopped before.
type Timer interface {
	Stop() bool
}

// Scheduler runs a callback once after a delay on a background goroutine.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }

type systemScheduler struct{}

type systemTimer struct {
	t *time.Timer
}

func (st systemTimer) Stop() bool { return st.t.Stop() }

func (systemScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return systemTimer{t: time.AfterFunc(d, fn)}
}

// SystemScheduler returns a Scheduler backed by time.AfterFunc.
func SystemScheduler() Scheduler { return systemScheduler{} }
