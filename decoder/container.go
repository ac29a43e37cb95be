package decoder

import (
	"iter"
	"slices"

	"github.com/jacoelho/jsonview/internal/queue"
	"github.com/jacoelho/jsonview/view"
)

// Container accumulates the views of a collection decode.
type Container interface {
	Kind() view.ContainerKind
	Len() int
	// Add reports whether v was kept. Only a Set ever drops elements.
	Add(v *view.View) bool
	All() iter.Seq[*view.View]
}

// NewContainer returns an empty container of the given kind.
func NewContainer(kind view.ContainerKind) Container {
	switch kind {
	case view.KindSet:
		return NewSet()
	case view.KindQueue:
		return NewQueue()
	default:
		return NewList()
	}
}

// List keeps views in insertion order.
type List struct {
	views []*view.View
}

func NewList() *List {
	return &List{}
}

func (l *List) Kind() view.ContainerKind { return view.KindList }

func (l *List) Len() int { return len(l.views) }

func (l *List) Add(v *view.View) bool {
	l.views = append(l.views, v)
	return true
}

// At panics if i is out of range, like slice indexing.
func (l *List) At(i int) *view.View {
	return l.views[i]
}

func (l *List) All() iter.Seq[*view.View] {
	return slices.Values(l.views)
}

// Set keeps one view per distinct document. Iteration order is unspecified.
type Set struct {
	buckets map[uint64][]*view.View
	size    int
}

func NewSet() *Set {
	return &Set{buckets: make(map[uint64][]*view.View)}
}

func (s *Set) Kind() view.ContainerKind { return view.KindSet }

func (s *Set) Len() int { return s.size }

func (s *Set) Add(v *view.View) bool {
	if s.Contains(v) {
		return false
	}
	h := v.Document().Hash()
	s.buckets[h] = append(s.buckets[h], v)
	s.size++
	return true
}

// Contains reports whether a view over an equal document is present.
func (s *Set) Contains(v *view.View) bool {
	for _, existing := range s.buckets[v.Document().Hash()] {
		if existing.Equal(v) {
			return true
		}
	}
	return false
}

func (s *Set) All() iter.Seq[*view.View] {
	return func(yield func(*view.View) bool) {
		for _, bucket := range s.buckets {
			for _, v := range bucket {
				if !yield(v) {
					return
				}
			}
		}
	}
}

// Queue hands views out in insertion order.
type Queue struct {
	q *queue.Queue[*view.View]
}

func NewQueue() *Queue {
	return &Queue{q: queue.New[*view.View]()}
}

func (q *Queue) Kind() view.ContainerKind { return view.KindQueue }

func (q *Queue) Len() int { return q.q.Size() }

func (q *Queue) Add(v *view.View) bool {
	q.q.Push(v)
	return true
}

// Pop removes and returns the oldest view.
func (q *Queue) Pop() (*view.View, bool) {
	return q.q.Pop()
}

func (q *Queue) Peek() (*view.View, bool) {
	return q.q.Peek()
}

func (q *Queue) All() iter.Seq[*view.View] {
	return q.q.All()
}
