// Package guard provides small argument-validation clauses. Each clause
// returns an error wrapping a package sentinel, so callers can branch with
// errors.Is while the message carries the offending argument's name.
package guard

import (
	"errors"
	"fmt"
	"reflect"
	"time"
)

// Validation sentinels.
var (
	ErrNil         = errors.New("must not be nil")
	ErrNonPositive = errors.New("must be positive")
	ErrOutOfRange  = errors.New("out of range")
	ErrEmpty       = errors.New("must not be empty")
)

// NotNil fails when v is nil, including a typed nil stored in an interface
// (nil funcs, pointers, maps, slices and channels).
func NotNil(name string, v any) error {
	if v == nil {
		return fmt.Errorf("%s: %w", name, ErrNil)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Func, reflect.Map, reflect.Slice, reflect.Chan, reflect.Interface:
		if rv.IsNil() {
			return fmt.Errorf("%s: %w", name, ErrNil)
		}
	}
	return nil
}

// Positive fails unless d is strictly greater than zero.
func Positive(name string, d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%s (%v): %w", name, d, ErrNonPositive)
	}
	return nil
}

// InRange fails unless lo <= v <= hi.
func InRange(name string, v, lo, hi int) error {
	if v < lo || v > hi {
		return fmt.Errorf("%s (%d, want %d..%d): %w", name, v, lo, hi, ErrOutOfRange)
	}
	return nil
}

// NotEmpty fails when s is the empty string.
func NotEmpty(name, s string) error {
	if s == "" {
		return fmt.Errorf("%s: %w", name, ErrEmpty)
	}
	return nil
}
