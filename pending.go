package pacer

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
)

// Outcome is the terminal state of a scheduled action.
type Outcome int32

const (
	// OutcomePending means the action has neither run nor been canceled.
	OutcomePending Outcome = iota
	// OutcomeExecuted means the action ran.
	OutcomeExecuted
	// OutcomeCanceled means the action was superseded by a later call,
	// canceled, reset, or closed before it could run. Not an error.
	OutcomeCanceled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeExecuted:
		return "executed"
	case OutcomeCanceled:
		return "canceled"
	default:
		return "pending"
	}
}

// Pending is the completion handle for a scheduled action. It resolves
// exactly once, to OutcomeExecuted or OutcomeCanceled. A superseded call's
// handle resolves normally with OutcomeCanceled; it never carries an error.
type Pending struct {
	id      string
	done    chan struct{}
	outcome atomic.Int32
}

func newPending() *Pending {
	return &Pending{
		id:   uuid.NewString(),
		done: make(chan struct{}),
	}
}

// ID identifies this scheduled action, e.g. for correlating log lines.
func (p *Pending) ID() string { return p.id }

// Done is closed when the handle resolves.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Outcome returns the current state without blocking.
func (p *Pending) Outcome() Outcome { return Outcome(p.outcome.Load()) }

// Wait blocks until the handle resolves or ctx is done.
func (p *Pending) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-p.done:
		return p.Outcome(), nil
	case <-ctx.Done():
		return OutcomePending, ctx.Err()
	}
}

// resolve moves the handle to a terminal state. Only the first call wins;
// later calls (e.g. a fire racing a cancel) are no-ops.
func (p *Pending) resolve(o Outcome) {
	if p.outcome.CompareAndSwap(int32(OutcomePending), int32(o)) {
		close(p.done)
	}
}
