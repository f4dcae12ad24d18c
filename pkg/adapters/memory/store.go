package memory

import (
	"context"
	"sync"

	"github.com/aretw0/websession/pkg/domain"
)

// Store implements ports.ObjectStore in memory.
// Objects are kept by reference. Safe for concurrent use.
type Store[T any] struct {
	data map[string]T
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore[T any]() *Store[T] {
	return &Store[T]{
		data: make(map[string]T),
	}
}

// Create stores obj under id unless the id is taken.
func (s *Store[T]) Create(ctx context.Context, id string, obj T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[id]; ok {
		return domain.ErrDuplicate
	}
	s.data[id] = obj
	return nil
}

// Get retrieves the object stored under id.
func (s *Store[T]) Get(ctx context.Context, id string) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.data[id]
	if !ok {
		var zero T
		return zero, domain.ErrNotFound
	}
	return obj, nil
}

// Delete removes the object.
func (s *Store[T]) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns the stored ids.
func (s *Store[T]) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}
