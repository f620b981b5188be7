/*
Package pacer provides debounce and throttle pacing for zero-argument
actions, plus keyed per-client throttling for HTTP handlers.

A Debouncer runs an action only after a quiet period with no further calls;
every call restarts the wait and supersedes the previously scheduled action:

	import (
		"time"
		"github.com/pacekit/pacer"
	)

	d, _ := pacer.NewDebouncer(300 * time.Millisecond)
	defer d.Close()

	// Only the action from the last call before 300ms of quiet runs.
	d.Debounce(saveDraft)

A Throttler runs an action at most once per interval. The first call in a
window executes immediately; later calls are dropped, or deferred once to
the end of the window when trailing execution is requested:

	t, _ := pacer.NewThrottler(time.Second)
	defer t.Close()

	executed, _ := t.Throttle(refresh, true)

Both types accept a manual clock and scheduler (see the clock package) so
timing behavior can be tested without sleeping.

For rate limiting many clients at once, Keyed maintains one Throttler per
key behind a ristretto cache, and HTTPMiddleware wires it into any
net/http or mux handler chain. The gate package provides the same throttle
window shared across processes via Redis.
*/
package pacer
