package view

// History is a bounded LIFO stack. Pushing beyond capacity evicts the
// oldest entry.
type History[T any] struct {
	items []T
	limit int
}

// NewHistory creates a stack holding at most limit entries (minimum 1).
func NewHistory[T any](limit int) *History[T] {
	if limit < 1 {
		limit = 1
	}
	return &History[T]{limit: limit}
}

// Push adds v on top.
func (h *History[T]) Push(v T) {
	h.items = append(h.items, v)
	if len(h.items) > h.limit {
		h.items = h.items[len(h.items)-h.limit:]
	}
}

// Pop removes and returns the top entry.
func (h *History[T]) Pop() (T, bool) {
	var zero T
	if len(h.items) == 0 {
		return zero, false
	}
	v := h.items[len(h.items)-1]
	h.items[len(h.items)-1] = zero
	h.items = h.items[:len(h.items)-1]
	return v, true
}

func (h *History[T]) Len() int { return len(h.items) }

// Clear drops every entry.
func (h *History[T]) Clear() { h.items = nil }
