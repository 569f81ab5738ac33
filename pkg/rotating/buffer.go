package rotating

import "errors"

// ErrInvalidOperation is returned by the removal operations a Buffer does not support.
var ErrInvalidOperation = errors.New("rotating: invalid operation on rotating buffer")

// Buffer is a fixed-capacity, overwrite-on-full window of values.
// A Buffer is not safe for concurrent use.
type Buffer[T any] struct {
	slots  []T
	cursor uint64
}

// New creates a Buffer holding at most capacity values.
// It panics if capacity is less than one.
func New[T any](capacity int) *Buffer[T] {
	if capacity < 1 {
		panic("rotating: capacity must be at least 1")
	}
	return &Buffer[T]{slots: make([]T, capacity)}
}

// Push writes v into the next slot, overwriting the oldest value when full.
// It returns the buffer so calls can be chained.
func (b *Buffer[T]) Push(v T) *Buffer[T] {
	b.slots[b.index(b.cursor)] = v
	b.cursor++
	return b
}

// First returns the oldest resident value.
func (b *Buffer[T]) First() (T, bool) {
	var zero T
	if b.cursor == 0 {
		return zero, false
	}
	if b.cursor <= uint64(len(b.slots)) {
		return b.slots[0], true
	}
	return b.slots[b.index(b.cursor)], true
}

// Last returns the most recently pushed value.
func (b *Buffer[T]) Last() (T, bool) {
	var zero T
	if b.cursor == 0 {
		return zero, false
	}
	return b.slots[b.index(b.cursor-1)], true
}

// Clear logically empties the buffer. Storage is kept for reuse.
func (b *Buffer[T]) Clear() {
	var zero T
	for i := range b.slots {
		b.slots[i] = zero
	}
	b.cursor = 0
}

// Len returns the number of resident values.
func (b *Buffer[T]) Len() int {
	if b.cursor >= uint64(len(b.slots)) {
		return len(b.slots)
	}
	return int(b.cursor)
}

// Cap returns the fixed capacity.
func (b *Buffer[T]) Cap() int {
	return len(b.slots)
}

// Full reports whether the buffer holds Cap values.
func (b *Buffer[T]) Full() bool {
	return b.cursor >= uint64(len(b.slots))
}

// Values returns a copy of the resident values, oldest first.
func (b *Buffer[T]) Values() []T {
	n := b.Len()
	out := make([]T, 0, n)
	start := b.cursor - uint64(n)
	for i := uint64(0); i < uint64(n); i++ {
		out = append(out, b.slots[b.index(start+i)])
	}
	return out
}

// Pop always fails: values cannot be removed from the end.
func (b *Buffer[T]) Pop() (T, error) {
	var zero T
	return zero, ErrInvalidOperation
}

// Shift always fails: values cannot be removed from the front.
func (b *Buffer[T]) Shift() (T, error) {
	var zero T
	return zero, ErrInvalidOperation
}

// Unshift always fails: values cannot be inserted at the front.
func (b *Buffer[T]) Unshift(T) error {
	return ErrInvalidOperation
}

func (b *Buffer[T]) index(n uint64) int {
	return int(n % uint64(len(b.slots)))
}
