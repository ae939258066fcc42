package memory

import (
	"context"
	"fmt"
	"sync"

	apperrors "github.com/hatbazar/storefront/pkg/errors"
)

// Storage is an in-process key-value store. It backs development setups and
// tests; carts stored here do not survive a process restart.
type Storage struct {
	mu    sync.RWMutex
	slots map[string]string
}

// New creates an empty in-memory storage.
func New() *Storage {
	return &Storage{slots: make(map[string]string)}
}

// Get returns the value stored under key.
func (s *Storage) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.slots[key]
	if !ok {
		return "", fmt.Errorf("key %s: %w", key, apperrors.ErrNotFound)
	}
	return value, nil
}

// Set writes value under key.
func (s *Storage) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.slots[key] = value
	return nil
}

// Delete removes the key.
func (s *Storage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.slots, key)
	return nil
}
