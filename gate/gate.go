// Package gate coordinates a throttle window for keyed callers, in memory
// or shared across processes through Redis. A gate answers one question:
// may this key execute now, and if not, how long until it may.
package gate

import (
	"context"
	"time"
)

// Gate is the interface that abstracts the shared-window functionality.
type Gate interface {
	// Allow reports whether key may execute now. When denied, the
	// returned duration is the remaining wait; it is zero when allowed.
	Allow(ctx context.Context, key string) (bool, time.Duration, error)

	// Reset clears the window for key so its next call is allowed.
	Reset(ctx context.Context, key string) error
}
