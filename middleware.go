package pacer

import (
	"fmt"
	"net/http"
)

// HTTPMiddleware creates a middleware that throttles requests per caller.
// This function is compatible with both standard net/http and mux handlers.
// The handler itself is the throttled action: the first request per key in
// each window is served, later ones are rejected with 429 and a
// Retry-After header.
func HTTPMiddleware(k *Keyed, keyGetter func(r *http.Request) string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userKey := keyGetter(r) // get the unique identifier for the requester

			executed, err := k.Throttle(userKey, func() {
				next.ServeHTTP(w, r)
			}, false)
			if err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}

			if !executed {
				retryAfter := k.TimeUntilNextAllowed(userKey)
				w.Header().Add("Retry-After", fmt.Sprintf("%.0f", retryAfter.Seconds()))
				w.Header().Add("RateLimit-Reset", fmt.Sprintf("%v", retryAfter.Seconds()))
				w.WriteHeader(http.StatusTooManyRequests)
			}
		})
	}
}
