package queue

import (
	"iter"
	"slices"
)

// Queue is a first-in, first-out sequence. It is not safe for concurrent use.
type Queue[T any] struct {
	items []T
	head  int
}

func New[T any]() *Queue[T] {
	return &Queue[T]{}
}

// NewWithCapacity reduces allocations when the number of elements is known.
func NewWithCapacity[T any](capacity int) *Queue[T] {
	return &Queue[T]{
		items: make([]T, 0, capacity),
	}
}

// Push appends elements in order; the first argument leaves first.
func (q *Queue[T]) Push(items ...T) {
	q.items = append(q.items, items...)
}

func (q *Queue[T]) Pop() (T, bool) {
	var zero T
	if q.IsEmpty() {
		return zero, false
	}

	item := q.items[q.head]
	q.items[q.head] = zero
	q.head++

	// reclaim the consumed prefix once it dominates the backing array
	if q.head > len(q.items)/2 {
		q.items = slices.Delete(q.items, 0, q.head)
		q.head = 0
	}
	return item, true
}

func (q *Queue[T]) Peek() (T, bool) {
	if q.IsEmpty() {
		var zero T
		return zero, false
	}
	return q.items[q.head], true
}

func (q *Queue[T]) IsEmpty() bool {
	return q.Size() == 0
}

func (q *Queue[T]) Size() int {
	return len(q.items) - q.head
}

// All iterates from front to back without consuming.
func (q *Queue[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, item := range q.items[q.head:] {
			if !yield(item) {
				return
			}
		}
	}
}

// ToSlice orders from front to back.
func (q *Queue[T]) ToSlice() []T {
	return slices.Clone(q.items[q.head:])
}
