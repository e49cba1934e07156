package engine

// store is an in-memory collection keyed by generated identifier, iterated
// in insertion order for display. It enforces no constraints itself; the
// engine's operation handlers own all cross-entity rules.
type store[T any] struct {
	ids   []string
	items map[string]*T
}

func newStore[T any]() *store[T] {
	return &store[T]{
		items: make(map[string]*T),
	}
}

func (s *store[T]) insert(id string, v *T) {
	if _, exists := s.items[id]; !exists {
		s.ids = append(s.ids, id)
	}
	s.items[id] = v
}

// replace swaps the record stored under id, keeping its position.
// Returns false when the id is unknown.
func (s *store[T]) replace(id string, v *T) bool {
	if _, exists := s.items[id]; !exists {
		return false
	}
	s.items[id] = v
	return true
}

func (s *store[T]) get(id string) (*T, bool) {
	v, ok := s.items[id]
	return v, ok
}

// list returns copies of all records in insertion order
func (s *store[T]) list() []T {
	out := make([]T, 0, len(s.ids))
	for _, id := range s.ids {
		out = append(out, *s.items[id])
	}
	return out
}

func (s *store[T]) len() int {
	return len(s.ids)
}
