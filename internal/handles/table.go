package handles

import (
	"errors"
	"sync"
)

var ErrClosed = errors.New("handle table closed")

// Handle is a 1-based slot index. 0 is invalid.
type Handle uint32

// Table is an in-memory handle table with slot reuse.
type Table[T any] struct {
	entries  []entry[T]
	freeList []Handle
	mu       sync.RWMutex
	live     int
	closed   bool
}

type entry[T any] struct {
	value T
	valid bool
}

// New creates an empty table.
func New[T any]() *Table[T] {
	return &Table[T]{
		entries:  make([]entry[T], 0, 64),
		freeList: make([]Handle, 0, 16),
	}
}

// Insert stores a value and returns its handle.
func (t *Table[T]) Insert(value T) (Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return 0, ErrClosed
	}

	e := entry[T]{value: value, valid: true}
	t.live++

	if len(t.freeList) > 0 {
		h := t.freeList[len(t.freeList)-1]
		t.freeList = t.freeList[:len(t.freeList)-1]
		t.entries[h-1] = e
		return h, nil
	}

	t.entries = append(t.entries, e)
	return Handle(len(t.entries)), nil
}

// Get retrieves a value by handle.
func (t *Table[T]) Get(h Handle) (T, bool) {
	var zero T
	if h == 0 {
		return zero, false
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	idx := int(h) - 1
	if idx >= len(t.entries) || !t.entries[idx].valid {
		return zero, false
	}
	return t.entries[idx].value, true
}

// Set replaces the value behind a live handle.
func (t *Table[T]) Set(h Handle, value T) bool {
	if h == 0 {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	idx := int(h) - 1
	if idx >= len(t.entries) || !t.entries[idx].valid {
		return false
	}
	t.entries[idx].value = value
	return true
}

// Remove frees a handle and returns the value it held.
func (t *Table[T]) Remove(h Handle) (T, bool) {
	var zero T
	if h == 0 {
		return zero, false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	idx := int(h) - 1
	if idx >= len(t.entries) || !t.entries[idx].valid {
		return zero, false
	}

	value := t.entries[idx].value
	t.entries[idx] = entry[T]{}
	t.freeList = append(t.freeList, h)
	t.live--
	return value, true
}

// RemoveFunc frees every handle whose value satisfies fn and returns how
// many were removed.
func (t *Table[T]) RemoveFunc(fn func(T) bool) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for i := range t.entries {
		e := &t.entries[i]
		if e.valid && fn(e.value) {
			*e = entry[T]{}
			t.freeList = append(t.freeList, Handle(i+1))
			t.live--
			n++
		}
	}
	return n
}

// Len returns the number of live handles.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.live
}

// Each iterates over live handles until fn returns false.
// fn must not modify the table.
func (t *Table[T]) Each(fn func(Handle, T) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for i, e := range t.entries {
		if e.valid {
			if !fn(Handle(i+1), e.value) {
				break
			}
		}
	}
}

// Close drops every handle and rejects further inserts.
func (t *Table[T]) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true
	t.entries = nil
	t.freeList = nil
	t.live = 0
	return nil
}
