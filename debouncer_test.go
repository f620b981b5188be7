package pacer_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jpillora/backoff"

	"github.com/pacekit/pacer"
	"github.com/pacekit/pacer/clock"
	"github.com/pacekit/pacer/guard"
)

func TestDebouncerValidation(t *testing.T) {
	if _, err := pacer.NewDebouncer(0); !errors.Is(err, guard.ErrNonPositive) {
		t.Errorf("zero delay: want guard.ErrNonPositive, got %v", err)
	}
	if _, err := pacer.NewDebouncer(-time.Second); !errors.Is(err, guard.ErrNonPositive) {
		t.Errorf("negative delay: want guard.ErrNonPositive, got %v", err)
	}

	d, err := pacer.NewDebouncer(time.Second)
	if err != nil {
		t.Fatalf("NewDebouncer: %v", err)
	}
	defer d.Close()

	if _, err := d.Debounce(nil); !errors.Is(err, guard.ErrNil) {
		t.Errorf("nil fn: want guard.ErrNil, got %v", err)
	}
}

func TestDebouncerLastCallWins(t *testing.T) {
	fk := clock.NewFake(time.Unix(0, 0))
	d, err := pacer.NewDebouncer(300*time.Millisecond,
		pacer.WithClock(fk), pacer.WithScheduler(fk))
	if err != nil {
		t.Fatalf("NewDebouncer: %v", err)
	}
	defer d.Close()

	var ran []int
	var handles []*pacer.Pending

	// Five calls 100ms apart, all inside each other's quiet period.
	for i := 0; i < 5; i++ {
		i := i
		p, err := d.Debounce(func() { ran = append(ran, i) })
		if err != nil {
			t.Fatalf("Debounce(%d): %v", i, err)
		}
		handles = append(handles, p)
		if i < 4 {
			fk.Advance(100 * time.Millisecond)
		}
	}

	fk.Advance(300 * time.Millisecond)

	if len(ran) != 1 || ran[0] != 4 {
		t.Errorf("want exactly the last action (4) to run once, got %v", ran)
	}
	for i, p := range handles[:4] {
		if p.Outcome() != pacer.OutcomeCanceled {
			t.Errorf("handle %d: want OutcomeCanceled, got %v", i, p.Outcome())
		}
	}
	if handles[4].Outcome() != pacer.OutcomeExecuted {
		t.Errorf("final handle: want OutcomeExecuted, got %v", handles[4].Outcome())
	}

	// Quiet restarts from the last call only.
	ran = nil
	if _, err := d.Debounce(func() { ran = append(ran, 99) }); err != nil {
		t.Fatalf("Debounce: %v", err)
	}
	fk.Advance(299 * time.Millisecond)
	if len(ran) != 0 {
		t.Fatalf("action ran before the quiet period elapsed: %v", ran)
	}
	fk.Advance(time.Millisecond)
	if len(ran) != 1 {
		t.Fatalf("want one execution after the quiet period, got %v", ran)
	}
}

// Supersession is atomic under the lock: however many goroutines call
// Debounce at once, exactly one pending action survives and fires.
func TestDebouncerConcurrentCallsSinglePending(t *testing.T) {
	fk := clock.NewFake(time.Unix(0, 0))
	d, err := pacer.NewDebouncer(100*time.Millisecond,
		pacer.WithClock(fk), pacer.WithScheduler(fk))
	if err != nil {
		t.Fatalf("NewDebouncer: %v", err)
	}
	defer d.Close()

	const callers = 32
	var executions atomic.Int64
	handles := make([]*pacer.Pending, callers)
	start := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			p, err := d.Debounce(func() { executions.Add(1) })
			if err != nil {
				t.Errorf("Debounce: %v", err)
				return
			}
			handles[i] = p
		}(i)
	}
	close(start)
	wg.Wait()

	fk.Advance(time.Second)

	if got := executions.Load(); got != 1 {
		t.Errorf("want exactly one surviving execution, got %d", got)
	}

	executed, canceled := 0, 0
	for i, p := range handles {
		switch p.Outcome() {
		case pacer.OutcomeExecuted:
			executed++
		case pacer.OutcomeCanceled:
			canceled++
		default:
			t.Errorf("handle %d still pending", i)
		}
	}
	if executed != 1 || canceled != callers-1 {
		t.Errorf("want 1 executed / %d canceled handles, got %d / %d",
			callers-1, executed, canceled)
	}
}

func TestDebouncerCancel(t *testing.T) {
	fk := clock.NewFake(time.Unix(0, 0))
	d, err := pacer.NewDebouncer(100*time.Millisecond,
		pacer.WithClock(fk), pacer.WithScheduler(fk))
	if err != nil {
		t.Fatalf("NewDebouncer: %v", err)
	}
	defer d.Close()

	ran := false
	p, err := d.Debounce(func() { ran = true })
	if err != nil {
		t.Fatalf("Debounce: %v", err)
	}

	d.Cancel()
	fk.Advance(time.Second)

	if ran {
		t.Error("canceled action must not run")
	}
	if p.Outcome() != pacer.OutcomeCanceled {
		t.Errorf("want OutcomeCanceled, got %v", p.Outcome())
	}

	// Cancel with nothing pending is a no-op.
	d.Cancel()
}

func TestDebouncerClose(t *testing.T) {
	fk := clock.NewFake(time.Unix(0, 0))
	d, err := pacer.NewDebouncer(100*time.Millisecond,
		pacer.WithClock(fk), pacer.WithScheduler(fk))
	if err != nil {
		t.Fatalf("NewDebouncer: %v", err)
	}

	ran := false
	p, err := d.Debounce(func() { ran = true })
	if err != nil {
		t.Fatalf("Debounce: %v", err)
	}

	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	if _, err := d.Debounce(func() {}); !errors.Is(err, pacer.ErrClosed) {
		t.Errorf("want ErrClosed after Close, got %v", err)
	}

	fk.Advance(time.Second)
	if ran {
		t.Error("action must not run after Close")
	}
	if p.Outcome() != pacer.OutcomeCanceled {
		t.Errorf("want OutcomeCanceled, got %v", p.Outcome())
	}
}

// countingClock records how often its readings are taken.
type countingClock struct {
	inner clock.Clock
	calls atomic.Int64
}

func (c *countingClock) Now() time.Time {
	c.calls.Add(1)
	return c.inner.Now()
}

func TestDebouncerUsesConfiguredClock(t *testing.T) {
	fk := clock.NewFake(time.Unix(0, 0))
	ck := &countingClock{inner: fk}
	d, err := pacer.NewDebouncer(100*time.Millisecond,
		pacer.WithClock(ck), pacer.WithScheduler(fk))
	if err != nil {
		t.Fatalf("NewDebouncer: %v", err)
	}
	defer d.Close()

	if _, err := d.Debounce(func() {}); err != nil {
		t.Fatalf("Debounce: %v", err)
	}
	if ck.calls.Load() == 0 {
		t.Error("the clock supplied via WithClock must be consulted")
	}
}

func TestDebouncerAdaptiveDelay(t *testing.T) {
	fk := clock.NewFake(time.Unix(0, 0))
	d, err := pacer.NewDebouncer(100*time.Millisecond,
		pacer.WithClock(fk), pacer.WithScheduler(fk),
		pacer.WithAdaptiveDelay(&backoff.Backoff{
			Min:    100 * time.Millisecond,
			Max:    time.Second,
			Factor: 2,
		}))
	if err != nil {
		t.Fatalf("NewDebouncer: %v", err)
	}
	defer d.Close()

	count := 0
	// First call waits Min (100ms); a superseding call at t=50 waits the
	// stretched 200ms, so the fire lands at t=250.
	if _, err := d.Debounce(func() { count++ }); err != nil {
		t.Fatalf("Debounce: %v", err)
	}
	fk.Advance(50 * time.Millisecond)
	if _, err := d.Debounce(func() { count++ }); err != nil {
		t.Fatalf("Debounce: %v", err)
	}

	fk.Advance(150 * time.Millisecond) // t=200: stretched wait not yet over
	if count != 0 {
		t.Fatalf("action ran before the stretched delay elapsed")
	}
	fk.Advance(50 * time.Millisecond) // t=250
	if count != 1 {
		t.Fatalf("want one execution at the stretched deadline, got %d", count)
	}

	// The fire resets the backoff; the next burst starts at Min again.
	if _, err := d.Debounce(func() { count++ }); err != nil {
		t.Fatalf("Debounce: %v", err)
	}
	fk.Advance(100 * time.Millisecond)
	if count != 2 {
		t.Fatalf("want base delay after reset, got %d executions", count)
	}
}
