package cart

import (
	"context"
	"log/slog"

	"github.com/hatbazar/storefront/internal/storage"
)

// Manager hands out the cart store for a session. It carries the shared
// storage backend and the subscribers every session store should notify
// (e.g. the event producer), so handlers never touch storage directly.
type Manager struct {
	storage storage.Storage
	logger  *slog.Logger
	subs    []Subscriber
}

// NewManager creates a cart manager on top of the given storage backend.
func NewManager(st storage.Storage, logger *slog.Logger) *Manager {
	return &Manager{storage: st, logger: logger}
}

// Subscribe registers a listener attached to every session store the manager
// hands out. Must be called before the first Session call.
func (m *Manager) Subscribe(sub Subscriber) {
	m.subs = append(m.subs, sub)
}

// Session returns the cart store for the given session, restored from
// durable storage.
func (m *Manager) Session(ctx context.Context, sessionID string) *Store {
	return NewStore(ctx, m.storage, sessionID, m.logger, m.subs...)
}
