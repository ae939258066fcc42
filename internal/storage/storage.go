package storage

import "context"

// Storage is the durable key-value slot the cart persists itself into.
// Implementations must treat values as opaque strings.
type Storage interface {
	// Get returns the value stored under key. When the key is absent the
	// returned error wraps apperrors.ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set writes value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
