// Package queue implements the min-priority worklist of §4.1: items ordered
// by (priority(item), insertion_sequence), ties broken by insertion order.
// Priority is pluggable; Go has no third-party priority-queue in the
// retrieval pack, so this wraps the standard container/heap (stdlib
// fallback, justified in DESIGN.md: no corpus dependency covers this
// concern).
package queue

import "container/heap"

// Priority computes an item's sort key; smaller pops first.
type Priority[T any] func(item T) float64

// Queue is a min-priority queue over items of type T.
type Queue[T any] struct {
	h *innerHeap[T]
}

// New returns an empty queue ordered by priority.
func New[T any](priority Priority[T]) *Queue[T] {
	h := &innerHeap[T]{priority: priority}
	heap.Init(h)
	return &Queue[T]{h: h}
}

// Push inserts item, stamping it with the next insertion sequence number so
// equal-priority items pop in FIFO order.
func (q *Queue[T]) Push(item T) {
	heap.Push(q.h, entry[T]{item: item, prio: q.h.priority(item), seq: q.h.nextSeq})
	q.h.nextSeq++
}

// Pop removes and returns the lowest-priority item. ok is false if the queue
// is empty.
func (q *Queue[T]) Pop() (item T, ok bool) {
	if q.h.Len() == 0 {
		return item, false
	}
	e := heap.Pop(q.h).(entry[T])
	return e.item, true
}

// Len returns the number of items currently queued.
func (q *Queue[T]) Len() int { return q.h.Len() }

type entry[T any] struct {
	item T
	prio float64
	seq  uint64
}

type innerHeap[T any] struct {
	entries  []entry[T]
	priority Priority[T]
	nextSeq  uint64
}

func (h *innerHeap[T]) Len() int { return len(h.entries) }

func (h *innerHeap[T]) Less(i, j int) bool {
	pi, pj := h.entries[i].prio, h.entries[j].prio
	if pi != pj {
		return pi < pj
	}
	return h.entries[i].seq < h.entries[j].seq
}

func (h *innerHeap[T]) Swap(i, j int) { h.entries[i], h.entries[j] = h.entries[j], h.entries[i] }

func (h *innerHeap[T]) Push(x any) { h.entries = append(h.entries, x.(entry[T])) }

func (h *innerHeap[T]) Pop() any {
	old := h.entries
	n := len(old)
	e := old[n-1]
	h.entries = old[:n-1]
	return e
}
