package console

// Selection is a set of selected identifiers that remembers insertion order.
// It is not safe for concurrent use; owners guard it with their own lock.
type Selection[K comparable] struct {
	order []K
	set   map[K]struct{}
}

// NewSelection returns an empty selection.
func NewSelection[K comparable]() *Selection[K] {
	return &Selection[K]{set: make(map[K]struct{})}
}

// Toggle adds id when absent and removes it when present. It reports whether
// id is selected afterwards.
func (s *Selection[K]) Toggle(id K) bool {
	if _, ok := s.set[id]; ok {
		s.remove(id)
		return false
	}
	s.set[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

// SelectAll replaces the selection with ids, dropping duplicates.
func (s *Selection[K]) SelectAll(ids []K) {
	s.Clear()
	for _, id := range ids {
		if _, ok := s.set[id]; ok {
			continue
		}
		s.set[id] = struct{}{}
		s.order = append(s.order, id)
	}
}

// Clear empties the selection.
func (s *Selection[K]) Clear() {
	s.order = nil
	s.set = make(map[K]struct{})
}

// Contains reports whether id is selected.
func (s *Selection[K]) Contains(id K) bool {
	_, ok := s.set[id]
	return ok
}

// Len returns the number of selected ids.
func (s *Selection[K]) Len() int { return len(s.order) }

// IDs returns the selected ids in the order they were selected.
func (s *Selection[K]) IDs() []K {
	out := make([]K, len(s.order))
	copy(out, s.order)
	return out
}

// Retain drops every id for which keep returns false and returns the dropped ids.
func (s *Selection[K]) Retain(keep func(K) bool) []K {
	var dropped []K
	kept := s.order[:0]
	for _, id := range s.order {
		if keep(id) {
			kept = append(kept, id)
			continue
		}
		delete(s.set, id)
		dropped = append(dropped, id)
	}
	s.order = kept
	return dropped
}

func (s *Selection[K]) remove(id K) {
	delete(s.set, id)
	for i, cur := range s.order {
		if cur == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}
