package testutil

import (
	"sync"

	ierr "github.com/loopreach/loopreach/internal/errors"
)

// InMemoryStore is a threadsafe map-backed store used by the in-memory
// repository implementations in tests.
type InMemoryStore[T any] struct {
	mu    sync.RWMutex
	items map[string]T
}

func NewInMemoryStore[T any]() *InMemoryStore[T] {
	return &InMemoryStore[T]{
		items: make(map[string]T),
	}
}

func (s *InMemoryStore[T]) Create(id string, item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; exists {
		return ierr.NewError("item already exists").
			WithHintf("Item with ID %s already exists", id).
			Mark(ierr.ErrAlreadyExists)
	}
	s.items[id] = item
	return nil
}

func (s *InMemoryStore[T]) Get(id string) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.items[id]
	if !exists {
		var zero T
		return zero, ierr.NewError("item not found").
			WithHintf("Item with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return item, nil
}

func (s *InMemoryStore[T]) Update(id string, item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; !exists {
		return ierr.NewError("item not found").
			WithHintf("Item with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	s.items[id] = item
	return nil
}

// Set writes unconditionally, for upsert semantics
func (s *InMemoryStore[T]) Set(id string, item T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[id] = item
}

func (s *InMemoryStore[T]) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
}

// List returns all items matching the filter; a nil filter matches everything
func (s *InMemoryStore[T]) List(filter func(T) bool) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []T
	for _, item := range s.items {
		if filter == nil || filter(item) {
			out = append(out, item)
		}
	}
	return out
}

// Find returns the first item matching the filter
func (s *InMemoryStore[T]) Find(filter func(T) bool) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, item := range s.items {
		if filter(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func (s *InMemoryStore[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]T)
}

func (s *InMemoryStore[T]) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
