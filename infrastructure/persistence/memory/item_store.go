package memory

import (
	"context"
	"sync"

	"dispatch/application/ports"
)

// ItemStore keeps items in process memory. It backs local runs without a
// DynamoDB table.
type ItemStore struct {
	mu    sync.RWMutex
	items map[string]ports.Item
}

var _ ports.ItemStore = (*ItemStore)(nil)

// NewItemStore creates an empty store.
func NewItemStore() *ItemStore {
	return &ItemStore{items: make(map[string]ports.Item)}
}

// Get implements ports.ItemStore
func (s *ItemStore) Get(_ context.Context, key string) (*ports.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[key]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

// Put implements ports.ItemStore
func (s *ItemStore) Put(_ context.Context, item *ports.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[item.Key] = *item
	return nil
}

// Delete implements ports.ItemStore
func (s *ItemStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, key)
	return nil
}
