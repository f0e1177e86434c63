// Package heap provides an array-backed binary heap addressed by a
// unique name, so an entry's cost can be changed in O(log n) without
// a duplicate insert. One implementation serves both orderings:
// NewMin pops the lowest cost first, NewMax the highest.
package heap

import "cmp"

// Item is a heap entry: a unique name, the cost it is ordered by, and
// an arbitrary payload.
type Item[N comparable, C cmp.Ordered, V any] struct {
	Name  N
	Cost  C
	Value V
}

// Heap is an indexed binary heap. The zero value is not usable; call
// NewMin or NewMax.
type Heap[N comparable, C cmp.Ordered, V any] struct {
	max   bool
	items []Item[N, C, V]
	pos   map[N]int
}

// NewMin returns a heap whose Pop returns the lowest cost.
func NewMin[N comparable, C cmp.Ordered, V any]() *Heap[N, C, V] {
	return &Heap[N, C, V]{pos: make(map[N]int)}
}

// NewMax returns a heap whose Pop returns the highest cost.
func NewMax[N comparable, C cmp.Ordered, V any]() *Heap[N, C, V] {
	return &Heap[N, C, V]{max: true, pos: make(map[N]int)}
}

func (h *Heap[N, C, V]) Len() int {
	return len(h.items)
}

// outranks reports whether cost a belongs nearer the top than cost b.
func (h *Heap[N, C, V]) outranks(a, b C) bool {
	if h.max {
		return a > b
	}
	return a < b
}

// AddOrUpdate inserts the named entry or, if the name is already
// present, replaces its cost and payload and restores heap order.
// O(log n) either way.
func (h *Heap[N, C, V]) AddOrUpdate(name N, cost C, value V) {
	item := Item[N, C, V]{Name: name, Cost: cost, Value: value}
	idx, exists := h.pos[name]
	if !exists {
		idx = len(h.items)
		h.items = append(h.items, item)
		h.pos[name] = idx
		h.siftUp(idx)
		return
	}
	old := h.items[idx]
	h.items[idx] = item
	if h.outranks(item.Cost, old.Cost) {
		h.siftUp(idx)
	} else if h.outranks(old.Cost, item.Cost) {
		h.siftDown(idx)
	}
}

// Contains reports whether an entry with the given name is present.
func (h *Heap[N, C, V]) Contains(name N) bool {
	_, ok := h.pos[name]
	return ok
}

// Pop removes and returns the top entry.
// Popping an empty heap is a programming error and panics; check Len
// or Peek first.
func (h *Heap[N, C, V]) Pop() Item[N, C, V] {
	if len(h.items) == 0 {
		panic("heap: pop from empty heap")
	}
	top := h.items[0]
	last := h.items[len(h.items)-1]
	h.items = h.items[:len(h.items)-1]
	delete(h.pos, top.Name)
	if len(h.items) > 0 {
		h.items[0] = last
		h.pos[last.Name] = 0
		h.siftDown(0)
	}
	return top
}

// Peek returns the top entry without removing it.
func (h *Heap[N, C, V]) Peek() (Item[N, C, V], bool) {
	if len(h.items) == 0 {
		var zero Item[N, C, V]
		return zero, false
	}
	return h.items[0], true
}

func (h *Heap[N, C, V]) siftUp(idx int) {
	item := h.items[idx]
	for idx > 0 {
		parent := (idx - 1) >> 1
		if !h.outranks(item.Cost, h.items[parent].Cost) {
			break
		}
		h.items[idx] = h.items[parent]
		h.pos[h.items[idx].Name] = idx
		idx = parent
	}
	h.items[idx] = item
	h.pos[item.Name] = idx
}

func (h *Heap[N, C, V]) siftDown(idx int) {
	size := len(h.items)
	item := h.items[idx]
	for {
		left := (idx << 1) + 1
		if left >= size {
			break
		}
		best := left
		if right := left + 1; right < size && h.outranks(h.items[right].Cost, h.items[left].Cost) {
			best = right
		}
		if !h.outranks(h.items[best].Cost, item.Cost) {
			break
		}
		h.items[idx] = h.items[best]
		h.pos[h.items[idx].Name] = idx
		idx = best
	}
	h.items[idx] = item
	h.pos[item.Name] = idx
}
