package clock

import (
	"context"
	"sync"
	"time"

	"github.com/beevik/ntp"
)

// NTPClock is a Clock whose readings are corrected by an offset obtained
// from an NTP server. Useful when multiple hosts coordinate windows (for
// example through the gate package) and their local clocks drift.
//
// The zero offset is used until Sync succeeds, so an NTPClock behaves like
// the system clock out of the box.
type NTPClock struct {
	mu      sync.RWMutex
	offset  time.Duration
	timeout time.Duration
}

// NewNTPClock returns an NTPClock with no offset applied yet.
func NewNTPClock(opts ...func(*NTPClock)) *NTPClock {
	c := &NTPClock{
		timeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithQueryTimeout sets the timeout for NTP queries issued by Sync.
// default: 5s
func WithQueryTimeout(d time.Duration) func(*NTPClock) {
	return func(c *NTPClock) {
		c.timeout = d
	}
}

// Sync queries the given NTP host and records the measured clock offset.
// Call it periodically from a background goroutine if long-running drift
// matters; readings keep using the last good offset on failure. The NTP
// exchange cannot be interrupted mid-flight, so ctx bounds it through its
// deadline: the query timeout is the smaller of the configured timeout and
// the time remaining on ctx.
func (c *NTPClock) Sync(ctx context.Context, host string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	resp, err := ntp.QueryWithOptions(host, ntp.QueryOptions{Timeout: timeout})
	if err != nil {
		return err
	}
	if err := resp.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	c.offset = resp.ClockOffset
	c.mu.Unlock()

	return nil
}

// Offset returns the currently applied clock offset.
func (c *NTPClock) Offset() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.offset
}

// Now returns the local time corrected by the last synced offset.
func (c *NTPClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return time.Now().Add(c.offset)
}
