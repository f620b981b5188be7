package guard_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pacekit/pacer/guard"
)

func TestNotNil(t *testing.T) {
	var nilFn func()
	var nilPtr *int
	var nonNil = 42

	cases := []struct {
		name string
		v    any
		want error
	}{
		{"untyped nil", nil, guard.ErrNil},
		{"nil func", nilFn, guard.ErrNil},
		{"typed nil pointer", nilPtr, guard.ErrNil},
		{"value", nonNil, nil},
		{"non-nil func", func() {}, nil},
		{"non-nil pointer", &nonNil, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := guard.NotNil("arg", tc.v)
			if !errors.Is(err, tc.want) {
				t.Errorf("NotNil(%v) = %v, want %v", tc.v, err, tc.want)
			}
		})
	}
}

func TestPositive(t *testing.T) {
	if err := guard.Positive("delay", time.Second); err != nil {
		t.Errorf("positive duration: %v", err)
	}
	if err := guard.Positive("delay", 0); !errors.Is(err, guard.ErrNonPositive) {
		t.Errorf("zero duration: want ErrNonPositive, got %v", err)
	}
	if err := guard.Positive("delay", -time.Minute); !errors.Is(err, guard.ErrNonPositive) {
		t.Errorf("negative duration: want ErrNonPositive, got %v", err)
	}
}

func TestInRange(t *testing.T) {
	if err := guard.InRange("index", 3, 0, 5); err != nil {
		t.Errorf("in range: %v", err)
	}
	if err := guard.InRange("index", -1, 0, 5); !errors.Is(err, guard.ErrOutOfRange) {
		t.Errorf("below range: want ErrOutOfRange, got %v", err)
	}
	if err := guard.InRange("index", 6, 0, 5); !errors.Is(err, guard.ErrOutOfRange) {
		t.Errorf("above range: want ErrOutOfRange, got %v", err)
	}
}

func TestNotEmpty(t *testing.T) {
	if err := guard.NotEmpty("key", "x"); err != nil {
		t.Errorf("non-empty: %v", err)
	}
	if err := guard.NotEmpty("key", ""); !errors.Is(err, guard.ErrEmpty) {
		t.Errorf("empty: want ErrEmpty, got %v", err)
	}
}

func TestErrorMessageNamesArgument(t *testing.T) {
	err := guard.Positive("interval", -1)
	if err == nil || !strings.Contains(err.Error(), "interval") {
		t.Errorf("error must name the argument, got %v", err)
	}
}
