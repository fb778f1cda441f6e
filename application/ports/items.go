package ports

import (
	"context"
	"time"
)

// Item is a stored key/value pair owned by a user.
type Item struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	Owner     string    `json:"owner,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ItemStore defines the interface for item persistence
type ItemStore interface {
	// Get returns the item stored under key, or nil when there is none.
	Get(ctx context.Context, key string) (*Item, error)

	// Put creates or replaces an item.
	Put(ctx context.Context, item *Item) error

	// Delete removes an item. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
