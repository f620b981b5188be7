package pacer

import "errors"

// ErrClosed is returned by Debounce and Throttle after Close. A closed
// instance never schedules or runs anything again.
var ErrClosed = errors.New("pacer: closed")

// Argument validation failures (nil action, non-positive delay or
// interval) are reported through the guard package sentinels; use
// errors.Is with guard.ErrNil and guard.ErrNonPositive.
