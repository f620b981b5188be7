package pacer

import (
	"time"

	"github.com/dgraph-io/ristretto"
	"golang.org/x/sync/singleflight"

	"github.com/pacekit/pacer/guard"
)

const defaultMaxKeys = 65536

// Keyed paces many independent callers with one Throttler per key. Idle
// keys are evicted by a ristretto cache, which closes their throttlers so
// no stray trailing timers survive eviction.
type Keyed struct {
	interval time.Duration
	opts     []Option
	cache    *ristretto.Cache
	group    singleflight.Group
}

// NewKeyed creates a keyed throttler. maxKeys bounds the number of live
// per-key instances (<= 0 uses a default of 65536); opts are applied to
// every Throttler created.
func NewKeyed(interval time.Duration, maxKeys int64, opts ...Option) (*Keyed, error) {
	if err := guard.Positive("interval", interval); err != nil {
		return nil, err
	}
	if maxKeys <= 0 {
		maxKeys = defaultMaxKeys
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxKeys * 10,
		MaxCost:     maxKeys,
		BufferItems: 64,
		OnEvict: func(item *ristretto.Item) {
			if th, ok := item.Value.(*Throttler); ok {
				th.Close()
			}
		},
	})
	if err != nil {
		return nil, err
	}

	return &Keyed{
		interval: interval,
		opts:     opts,
		cache:    cache,
	}, nil
}

// Throttle applies Throttler.Throttle to the instance for key, creating it
// on first use.
func (k *Keyed) Throttle(key string, fn func(), trailing bool) (bool, error) {
	th, err := k.throttler(key)
	if err != nil {
		return false, err
	}
	return th.Throttle(fn, trailing)
}

// TimeUntilNextAllowed reports the remaining wait for key; zero when the
// key is unknown or its window has elapsed.
func (k *Keyed) TimeUntilNextAllowed(key string) time.Duration {
	if v, ok := k.cache.Get(key); ok {
		return v.(*Throttler).TimeUntilNextAllowed()
	}
	return 0
}

// Reset clears the window for key, if one exists.
func (k *Keyed) Reset(key string) {
	if v, ok := k.cache.Get(key); ok {
		v.(*Throttler).Reset()
	}
}

// Close tears down the cache and every cached throttler.
func (k *Keyed) Close() error {
	k.cache.Clear()
	k.cache.Close()
	return nil
}

// throttler returns the instance for key. Creation is deduplicated with
// singleflight so concurrent first calls for a key share one window, and
// the cache write is flushed before returning so the next lookup hits.
func (k *Keyed) throttler(key string) (*Throttler, error) {
	if v, ok := k.cache.Get(key); ok {
		return v.(*Throttler), nil
	}

	v, err, _ := k.group.Do(key, func() (interface{}, error) {
		if v, ok := k.cache.Get(key); ok {
			return v, nil
		}
		th, err := NewThrottler(k.interval, k.opts...)
		if err != nil {
			return nil, err
		}
		k.cache.Set(key, th, 1)
		k.cache.Wait()
		return th, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Throttler), nil
}
