package gate

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/pacekit/pacer/guard"
)

// MemoryGate is an in-process Gate using the rate package, one limiter per
// key replenishing a single token per interval.
type MemoryGate struct {
	interval time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

var _ Gate = (*MemoryGate)(nil)

// NewMemoryGate constructs a MemoryGate. The interval must be strictly
// positive.
func NewMemoryGate(interval time.Duration) (*MemoryGate, error) {
	if err := guard.Positive("interval", interval); err != nil {
		return nil, err
	}
	return &MemoryGate{
		interval: interval,
		limiters: make(map[string]*rate.Limiter),
	}, nil
}

// Allow consumes the key's token if one is available. On denial the wait
// is computed from a reservation that is immediately canceled, so the
// check does not consume anything.
func (g *MemoryGate) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	lim, ok := g.limiters[key]
	if !ok {
		// Burst 1: a key holds at most one execution per window.
		lim = rate.NewLimiter(rate.Every(g.interval), 1)
		g.limiters[key] = lim
	}

	if lim.Allow() {
		return true, 0, nil
	}

	r := lim.Reserve()
	wait := r.Delay()
	r.Cancel()
	return false, wait, nil
}

// Reset drops the key's limiter; the next Allow starts a fresh window.
func (g *MemoryGate) Reset(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.limiters, key)
	return nil
}
