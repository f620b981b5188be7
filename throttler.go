package pacer

import (
	"sync"
	"time"

	"golang.org/x/exp/slog"

	"github.com/pacekit/pacer/clock"
	"github.com/pacekit/pacer/guard"
)

// Throttler runs an action at most once per interval. The first call in a
// window executes synchronously; later calls in the same window are
// dropped, or deferred once to the window's end when trailing execution is
// requested. Only the latest call's action is kept as the trailing
// candidate.
type Throttler struct {
	interval time.Duration
	clk      clock.Clock
	sched    clock.Scheduler
	log      *slog.Logger
	name     string

	mu        sync.Mutex
	last      time.Time // zero means never executed
	timer     clock.Timer
	pending   *Pending
	pendingFn func()
	epoch     uint64
	closed    bool
}

// NewThrottler creates a Throttler with the given window.
// The interval must be strictly positive.
func NewThrottler(interval time.Duration, opts ...Option) (*Throttler, error) {
	if err := guard.Positive("interval", interval); err != nil {
		return nil, err
	}

	s := newSettings(opts)
	return &Throttler{
		interval: interval,
		clk:      s.clk,
		sched:    s.sched,
		log:      s.log,
		name:     s.name,
	}, nil
}

// Throttle runs fn immediately if the window has elapsed since the last
// execution, reporting true. Otherwise, with trailing set, fn replaces any
// pending trailing candidate and runs once at the window's end; without
// trailing the call is dropped silently. Returns ErrClosed after Close and
// a guard validation error for a nil fn.
func (t *Throttler) Throttle(fn func(), trailing bool) (bool, error) {
	executed, _, err := t.ThrottleWithHandle(fn, trailing)
	return executed, err
}

// ThrottleWithHandle is Throttle plus the completion handle for the
// trailing candidate. The handle is nil when fn executed immediately or
// was dropped.
func (t *Throttler) ThrottleWithHandle(fn func(), trailing bool) (bool, *Pending, error) {
	if err := guard.NotNil("fn", fn); err != nil {
		return false, nil, err
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return false, nil, ErrClosed
	}

	now := t.clk.Now()
	if t.last.IsZero() || now.Sub(t.last) >= t.interval {
		t.last = now
		// A stale trailing action from an earlier window must never
		// double-fire alongside this immediate execution.
		t.discardLocked()
		t.mu.Unlock()

		fn()
		return true, nil, nil
	}

	if !trailing {
		t.mu.Unlock()
		return false, nil, nil
	}

	remaining := t.interval - now.Sub(t.last)
	t.discardLocked()
	e := t.epoch

	p := newPending()
	t.pending = p
	t.pendingFn = fn
	t.timer = t.sched.AfterFunc(remaining, func() { t.fireTrailing(e) })

	t.log.Debug("trailing execution scheduled",
		slog.String("name", t.name),
		slog.String("pending_id", p.ID()),
		slog.Duration("wait", remaining),
	)
	t.mu.Unlock()
	return false, p, nil
}

// fireTrailing runs on the scheduler's goroutine at the window's end. A
// stale epoch means the candidate was superseded, reset or closed while
// the callback waited on the lock.
func (t *Throttler) fireTrailing(e uint64) {
	t.mu.Lock()
	if t.closed || e != t.epoch {
		t.mu.Unlock()
		return
	}
	fn := t.pendingFn
	p := t.pending
	t.timer = nil
	t.pending = nil
	t.pendingFn = nil
	t.last = t.clk.Now()
	t.mu.Unlock()

	defer p.resolve(OutcomeExecuted)
	fn()
}

// Reset forgets the last execution and cancels any trailing candidate, so
// the next call executes immediately.
func (t *Throttler) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.last = time.Time{}
	t.discardLocked()
}

// TimeUntilNextAllowed returns zero if a call right now would execute
// immediately, otherwise the remaining wait. Never negative.
func (t *Throttler) TimeUntilNextAllowed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.last.IsZero() {
		return 0
	}
	remaining := t.interval - t.clk.Now().Sub(t.last)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// HasPending reports whether a trailing action is scheduled and has
// neither fired nor been canceled.
func (t *Throttler) HasPending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.timer != nil
}

// Close cancels any trailing candidate and permanently disables the
// instance; further calls return ErrClosed. Safe to call more than once.
func (t *Throttler) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true
	t.discardLocked()
	return nil
}

func (t *Throttler) discardLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	if t.pending != nil {
		t.pending.resolve(OutcomeCanceled)
		t.pending = nil
	}
	t.pendingFn = nil
	t.epoch++
}
