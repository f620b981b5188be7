package pacer

import (
	"sync"
	"time"

	"github.com/jpillora/backoff"
	"golang.org/x/exp/slog"

	"github.com/pacekit/pacer/clock"
	"github.com/pacekit/pacer/guard"
)

// Debouncer defers an action until a quiet period of no further calls has
// elapsed. At most one action is scheduled at any instant; each call
// cancels and replaces the previous one.
type Debouncer struct {
	delay time.Duration
	clk   clock.Clock
	sched clock.Scheduler
	log   *slog.Logger
	name  string

	mu      sync.Mutex
	timer   clock.Timer
	pending *Pending
	epoch   uint64
	burst   *backoff.Backoff // nil unless WithAdaptiveDelay; guarded by mu
	closed  bool
}

// NewDebouncer creates a Debouncer with the given quiet period.
// The delay must be strictly positive.
func NewDebouncer(delay time.Duration, opts ...Option) (*Debouncer, error) {
	if err := guard.Positive("delay", delay); err != nil {
		return nil, err
	}

	s := newSettings(opts)
	d := &Debouncer{
		delay: delay,
		clk:   s.clk,
		sched: s.sched,
		log:   s.log,
		name:  s.name,
		burst: s.burst,
	}
	return d, nil
}

// Debounce schedules fn to run after the quiet period, discarding any
// previously scheduled action. It returns immediately; the returned handle
// resolves OutcomeExecuted when fn eventually runs, or OutcomeCanceled if a
// later call supersedes it. Returns ErrClosed after Close and a guard
// validation error for a nil fn.
func (d *Debouncer) Debounce(fn func()) (*Pending, error) {
	if err := guard.NotNil("fn", fn); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, ErrClosed
	}

	wait := d.delay
	if d.burst != nil {
		wait = d.burst.Duration()
	}

	d.discardLocked()
	e := d.epoch

	p := newPending()
	d.pending = p
	d.timer = d.sched.AfterFunc(wait, func() { d.fire(e, fn, p) })

	d.log.Debug("debounce scheduled",
		slog.String("name", d.name),
		slog.String("pending_id", p.ID()),
		slog.Duration("wait", wait),
		slog.Time("run_at", d.clk.Now().Add(wait)),
	)
	return p, nil
}

// fire runs on the scheduler's goroutine. A stale epoch means the timer
// lost a race with a superseding call, Cancel or Close; it must be a no-op.
func (d *Debouncer) fire(e uint64, fn func(), p *Pending) {
	d.mu.Lock()
	if d.closed || e != d.epoch {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.pending = nil
	if d.burst != nil {
		d.burst.Reset()
	}
	d.mu.Unlock()

	// The action runs outside the lock; a panic propagates to the
	// scheduler's goroutine, after the handle resolves.
	defer p.resolve(OutcomeExecuted)
	fn()
}

// Cancel discards any pending action without running it.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.discardLocked()
	if d.burst != nil {
		d.burst.Reset()
	}
}

// Close cancels any pending action and permanently disables the instance;
// further Debounce calls return ErrClosed. Safe to call more than once.
func (d *Debouncer) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true
	d.discardLocked()
	return nil
}

// discardLocked stops the outstanding timer and resolves its handle as
// canceled. Bumping the epoch invalidates a callback that already fired
// and is waiting on the lock.
func (d *Debouncer) discardLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.pending != nil {
		d.pending.resolve(OutcomeCanceled)
		d.pending = nil
	}
	d.epoch++
}
