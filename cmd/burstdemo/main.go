package main

import (
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/exp/slog"

	"github.com/pacekit/pacer"
)

// Simulates two classic UI bursts: keystrokes against a debouncer and
// scroll events against a throttler, printing how many actions survive.
func main() {
	var saves atomic.Int64
	debouncer, err := pacer.NewDebouncer(300*time.Millisecond, pacer.WithName("save-draft"))
	if err != nil {
		slog.Error("create debouncer", slog.Any("error", err.Error()))
		return
	}
	defer debouncer.Close()

	// 10 keystrokes 50ms apart: every call supersedes the last, so only
	// one save runs, 300ms after the final keystroke.
	var last *pacer.Pending
	for i := 0; i < 10; i++ {
		last, err = debouncer.Debounce(func() {
			saves.Add(1)
		})
		if err != nil {
			slog.Error("debounce", slog.Any("error", err.Error()))
			return
		}
		time.Sleep(50 * time.Millisecond)
	}

	<-last.Done()
	fmt.Printf("10 keystrokes -> %d save(s), last handle: %s\n", saves.Load(), last.Outcome())

	var refreshes atomic.Int64
	throttler, err := pacer.NewThrottler(time.Second, pacer.WithName("refresh"))
	if err != nil {
		slog.Error("create throttler", slog.Any("error", err.Error()))
		return
	}
	defer throttler.Close()

	// 20 scroll events 100ms apart with trailing execution: one refresh
	// per second plus one trailing refresh at each window's end.
	for i := 1; i <= 20; i++ {
		executed, err := throttler.Throttle(func() {
			refreshes.Add(1)
		}, true)
		if err != nil {
			slog.Error("throttle", slog.Any("error", err.Error()))
			return
		}
		if executed {
			fmt.Printf("scroll event %d refreshed immediately\n", i)
		}
		time.Sleep(100 * time.Millisecond)
	}

	// Let the final trailing execution land.
	time.Sleep(throttler.TimeUntilNextAllowed())
	fmt.Printf("20 scroll events -> %d refresh(es)\n", refreshes.Load())
}
