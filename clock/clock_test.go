package clock_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pacekit/pacer/clock"
)

func TestFakeAdvanceFiresInDeadlineOrder(t *testing.T) {
	fk := clock.NewFake(time.Unix(0, 0))

	var order []string
	fk.AfterFunc(200*time.Millisecond, func() { order = append(order, "b") })
	fk.AfterFunc(100*time.Millisecond, func() { order = append(order, "a") })
	fk.AfterFunc(300*time.Millisecond, func() { order = append(order, "c") })

	fk.Advance(250 * time.Millisecond)
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Fatalf("want [a b], got %v", order)
	}

	fk.Advance(50 * time.Millisecond)
	if len(order) != 3 || order[2] != "c" {
		t.Fatalf("want [a b c], got %v", order)
	}
}

func TestFakeStop(t *testing.T) {
	fk := clock.NewFake(time.Unix(0, 0))

	fired := false
	tm := fk.AfterFunc(100*time.Millisecond, func() { fired = true })

	if !tm.Stop() {
		t.Error("first Stop must report true")
	}
	if tm.Stop() {
		t.Error("second Stop must report false")
	}

	fk.Advance(time.Second)
	if fired {
		t.Error("stopped timer must not fire")
	}
}

func TestFakeCallbackMaySchedule(t *testing.T) {
	fk := clock.NewFake(time.Unix(0, 0))

	var fires []time.Time
	fk.AfterFunc(100*time.Millisecond, func() {
		fires = append(fires, fk.Now())
		// Scheduled mid-advance; due within the same window.
		fk.AfterFunc(100*time.Millisecond, func() {
			fires = append(fires, fk.Now())
		})
	})

	fk.Advance(time.Second)
	if len(fires) != 2 {
		t.Fatalf("want 2 fires, got %d", len(fires))
	}
	if got := fires[1].Sub(fires[0]); got != 100*time.Millisecond {
		t.Errorf("chained timer offset: want 100ms, got %v", got)
	}
	if got := fk.Now(); got != time.Unix(0, 0).Add(time.Second) {
		t.Errorf("Now after Advance: got %v", got)
	}
}

func TestSystemScheduler(t *testing.T) {
	done := make(chan struct{})
	clock.SystemScheduler().AfterFunc(10*time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("system scheduler did not fire")
	}
}

func TestNTPClockSyncCanceledContext(t *testing.T) {
	c := clock.NewNTPClock()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := c.Sync(ctx, "pool.ntp.org"); !errors.Is(err, context.Canceled) {
		t.Errorf("want context.Canceled without querying, got %v", err)
	}
	if c.Offset() != 0 {
		t.Errorf("failed sync must not touch the offset, got %v", c.Offset())
	}
}

func TestNTPClockDefaults(t *testing.T) {
	c := clock.NewNTPClock()
	if c.Offset() != 0 {
		t.Errorf("fresh NTPClock offset: want 0, got %v", c.Offset())
	}

	// Without a sync the clock tracks the system clock.
	if d := c.Now().Sub(time.Now()); d < -time.Second || d > time.Second {
		t.Errorf("unsynced NTPClock drifted from system clock by %v", d)
	}
}
