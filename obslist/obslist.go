// Package obslist provides a thread-safe observable list. Subscribers are
// notified of individual mutations, and bulk updates can be batched so
// observers see a single Reset instead of a storm of per-item changes.
package obslist

import (
	"sync"

	"github.com/pacekit/pacer/guard"
)

// ChangeKind identifies what a Change describes.
type ChangeKind int

const (
	// Add means Item was inserted at Index.
	Add ChangeKind = iota
	// Remove means Item was removed from Index.
	Remove
	// Replace means Item replaced Old at Index.
	Replace
	// Reset means the list changed wholesale (Clear, or the end of a
	// batched update). Index is -1 and the item fields are zero.
	Reset
)

func (k ChangeKind) String() string {
	switch k {
	case Add:
		return "add"
	case Remove:
		return "remove"
	case Replace:
		return "replace"
	default:
		return "reset"
	}
}

// Change describes one mutation of a List.
type Change[T any] struct {
	Kind  ChangeKind
	Index int
	Item  T
	Old   T // set for Replace only
}

// List is an observable slice. All methods are safe for concurrent use.
// Subscriber callbacks run on the mutating goroutine, outside the list's
// lock, in subscription order.
type List[T any] struct {
	mu      sync.RWMutex
	items   []T
	subs    map[int]func(Change[T])
	order   []int
	nextSub int
	depth   int // BeginUpdate nesting
	dirty   bool
}

// New returns an empty List.
func New[T any]() *List[T] {
	return &List[T]{
		subs: make(map[int]func(Change[T])),
	}
}

// Subscribe registers fn for change notifications and returns its
// unsubscribe function.
func (l *List[T]) Subscribe(fn func(Change[T])) (unsubscribe func()) {
	l.mu.Lock()
	id := l.nextSub
	l.nextSub++
	l.subs[id] = fn
	l.order = append(l.order, id)
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		delete(l.subs, id)
		for i, sid := range l.order {
			if sid == id {
				l.order = append(l.order[:i], l.order[i+1:]...)
				break
			}
		}
		l.mu.Unlock()
	}
}

// Add appends item.
func (l *List[T]) Add(item T) {
	l.mu.Lock()
	l.items = append(l.items, item)
	notify := l.changedLocked(Change[T]{Kind: Add, Index: len(l.items) - 1, Item: item})
	l.mu.Unlock()

	notify()
}

// Insert places item at index i, shifting later items right.
func (l *List[T]) Insert(i int, item T) error {
	l.mu.Lock()
	if err := guard.InRange("index", i, 0, len(l.items)); err != nil {
		l.mu.Unlock()
		return err
	}
	l.items = append(l.items, item)
	copy(l.items[i+1:], l.items[i:])
	l.items[i] = item
	notify := l.changedLocked(Change[T]{Kind: Add, Index: i, Item: item})
	l.mu.Unlock()

	notify()
	return nil
}

// Set replaces the item at index i, returning the previous value.
func (l *List[T]) Set(i int, item T) (T, error) {
	var zero T

	l.mu.Lock()
	if err := guard.InRange("index", i, 0, len(l.items)-1); err != nil {
		l.mu.Unlock()
		return zero, err
	}
	old := l.items[i]
	l.items[i] = item
	notify := l.changedLocked(Change[T]{Kind: Replace, Index: i, Item: item, Old: old})
	l.mu.Unlock()

	notify()
	return old, nil
}

// RemoveAt deletes and returns the item at index i.
func (l *List[T]) RemoveAt(i int) (T, error) {
	var zero T

	l.mu.Lock()
	if err := guard.InRange("index", i, 0, len(l.items)-1); err != nil {
		l.mu.Unlock()
		return zero, err
	}
	item := l.items[i]
	l.items = append(l.items[:i], l.items[i+1:]...)
	notify := l.changedLocked(Change[T]{Kind: Remove, Index: i, Item: item})
	l.mu.Unlock()

	notify()
	return item, nil
}

// Clear removes all items.
func (l *List[T]) Clear() {
	l.mu.Lock()
	l.items = nil
	notify := l.changedLocked(Change[T]{Kind: Reset, Index: -1})
	l.mu.Unlock()

	notify()
}

// Get returns the item at index i.
func (l *List[T]) Get(i int) (T, error) {
	var zero T

	l.mu.RLock()
	defer l.mu.RUnlock()

	if err := guard.InRange("index", i, 0, len(l.items)-1); err != nil {
		return zero, err
	}
	return l.items[i], nil
}

// Len returns the number of items.
func (l *List[T]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.items)
}

// Items returns a copy of the current contents.
func (l *List[T]) Items() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}

// BeginUpdate suspends notifications until the matching EndUpdate. Calls
// nest; only the outermost EndUpdate emits, and it emits a single Reset
// if anything changed during the batch.
func (l *List[T]) BeginUpdate() {
	l.mu.Lock()
	l.depth++
	l.mu.Unlock()
}

// EndUpdate closes the innermost BeginUpdate.
func (l *List[T]) EndUpdate() {
	l.mu.Lock()
	if l.depth > 0 {
		l.depth--
	}
	notify := func() {}
	if l.depth == 0 && l.dirty {
		l.dirty = false
		notify = l.notifierLocked(Change[T]{Kind: Reset, Index: -1})
	}
	l.mu.Unlock()

	notify()
}

// Update runs fn inside a BeginUpdate/EndUpdate pair.
func (l *List[T]) Update(fn func()) {
	l.BeginUpdate()
	defer l.EndUpdate()
	fn()
}

// changedLocked records a mutation and returns the deferred notification,
// which collapses to a no-op while a batch is open.
func (l *List[T]) changedLocked(c Change[T]) func() {
	if l.depth > 0 {
		l.dirty = true
		return func() {}
	}
	return l.notifierLocked(c)
}

func (l *List[T]) notifierLocked(c Change[T]) func() {
	fns := make([]func(Change[T]), 0, len(l.order))
	for _, id := range l.order {
		if fn, ok := l.subs[id]; ok {
			fns = append(fns, fn)
		}
	}
	return func() {
		for _, fn := range fns {
			fn(c)
		}
	}
}
