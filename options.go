package pacer

import (
	"github.com/jpillora/backoff"
	"golang.org/x/exp/slog"

	"github.com/pacekit/pacer/clock"
)

// Option configures a Debouncer or Throttler.
type Option func(*settings)

type settings struct {
	clk   clock.Clock
	sched clock.Scheduler
	log   *slog.Logger
	name  string
	burst *backoff.Backoff
}

func newSettings(opts []Option) settings {
	s := settings{
		clk:   clock.SystemClock(),
		sched: clock.SystemScheduler(),
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithClock substitutes the clock used for window computations.
// default: clock.SystemClock()
func WithClock(c clock.Clock) Option {
	return func(s *settings) {
		s.clk = c
	}
}

// WithScheduler substitutes the scheduler used for deferred callbacks.
// default: clock.SystemScheduler()
func WithScheduler(sched clock.Scheduler) Option {
	return func(s *settings) {
		s.sched = sched
	}
}

// WithLogger sets the logger for debug-level scheduling events.
// default: slog.Default()
func WithLogger(log *slog.Logger) Option {
	return func(s *settings) {
		s.log = log
	}
}

// WithName tags log lines with an instance name, a good value being the
// action the instance paces, e.g. "search-suggest".
func WithName(name string) Option {
	return func(s *settings) {
		s.name = name
	}
}

// WithAdaptiveDelay stretches a Debouncer's quiet period while a burst is
// in flight: each superseding call waits b.Duration() instead of the fixed
// delay, and a fire or Cancel resets b. Set b.Min to the base delay.
// Throttlers ignore this option.
func WithAdaptiveDelay(b *backoff.Backoff) Option {
	return func(s *settings) {
		s.burst = b
	}
}
