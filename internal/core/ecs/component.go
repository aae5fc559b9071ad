package ecs

// Removable is implemented by anything holding per-entity data that must be
// dropped when the entity is destroyed.
type Removable interface {
	Remove(id EntityID)
}

// Store is a typed map from entity to component pointer.
type Store[T any] struct {
	data map[EntityID]*T
}

func NewStore[T any]() *Store[T] {
	return &Store[T]{data: make(map[EntityID]*T, 32)}
}

func (s *Store[T]) Set(id EntityID, c *T) { s.data[id] = c }
func (s *Store[T]) Remove(id EntityID)    { delete(s.data, id) }
func (s *Store[T]) Len() int              { return len(s.data) }

func (s *Store[T]) Get(id EntityID) (*T, bool) {
	c, ok := s.data[id]
	return c, ok
}

func (s *Store[T]) Has(id EntityID) bool {
	_, ok := s.data[id]
	return ok
}
