package domain

// Identifiable is anything that can be stored in a Set.
type Identifiable interface {
	Key() string
}

// Set keeps unique values ordered by insertion.
type Set[T Identifiable] struct {
	items map[string]T
	order []string
}

func NewSet[T Identifiable]() *Set[T] {
	return &Set[T]{items: make(map[string]T)}
}

func (s *Set[T]) Add(v T) bool {
	if _, ok := s.items[v.Key()]; ok {
		return false
	}

	s.items[v.Key()] = v
	s.order = append(s.order, v.Key())
	return true
}

func (s *Set[T]) Remove(key string) (T, bool) {
	v, ok := s.items[key]
	if !ok {
		return v, false
	}

	delete(s.items, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	return v, true
}

func (s *Set[T]) Get(key string) (T, bool) {
	v, ok := s.items[key]
	return v, ok
}

func (s *Set[T]) Has(key string) bool {
	_, ok := s.items[key]
	return ok
}

func (s *Set[T]) Len() int {
	return len(s.order)
}

func (s *Set[T]) Items() []T {
	res := make([]T, 0, len(s.order))
	for _, k := range s.order {
		res = append(res, s.items[k])
	}

	return res
}
