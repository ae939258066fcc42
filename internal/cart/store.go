package cart

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hatbazar/storefront/internal/domain"
	"github.com/hatbazar/storefront/internal/storage"
	apperrors "github.com/hatbazar/storefront/pkg/errors"
)

// keyPrefix namespaces cart slots in durable storage so they cannot collide
// with other persisted state (e.g. referral tracking).
const keyPrefix = "hatbazar:cart:"

// Snapshot is the read-only view handed to subscribers after each mutation.
type Snapshot struct {
	SessionID string            `json:"session_id"`
	Items     []domain.LineItem `json:"items"`
	Subtotal  float64           `json:"subtotal"`
	ItemCount int               `json:"item_count"`
}

// Subscriber is notified synchronously after every cart mutation.
type Subscriber func(ctx context.Context, snap Snapshot)

// Store owns the line items of one storefront session. It is the only writer
// of that session's cart: all mutations go through its operations, totals are
// derived on demand, and every mutation re-persists the full line-item list.
//
// The store never returns an error. Storage failures are logged and the
// in-memory state stays authoritative for the rest of the session; a corrupt
// persisted value is discarded and treated as an empty cart.
type Store struct {
	sessionID string
	key       string
	cart      domain.Cart
	storage   storage.Storage
	logger    *slog.Logger
	subs      []Subscriber
}

// NewStore builds the store for a session, restoring any previously
// persisted cart from storage.
func NewStore(ctx context.Context, st storage.Storage, sessionID string, logger *slog.Logger, subs ...Subscriber) *Store {
	s := &Store{
		sessionID: sessionID,
		key:       keyPrefix + sessionID,
		storage:   st,
		logger:    logger,
		subs:      subs,
	}
	s.restore(ctx)
	return s
}

// restore loads the persisted line-item list. A missing key yields an empty
// cart; so does any read or decode failure.
func (s *Store) restore(ctx context.Context) {
	raw, err := s.storage.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "cart restore failed, starting empty",
				slog.String("session_id", s.sessionID),
				slog.String("error", err.Error()),
			)
		}
		return
	}

	var items []domain.LineItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.logger.WarnContext(ctx, "discarding corrupt persisted cart",
			slog.String("session_id", s.sessionID),
			slog.String("error", err.Error()),
		)
		return
	}

	s.cart.Items = items
}

// Subscribe registers a listener notified synchronously after each mutation.
func (s *Store) Subscribe(sub Subscriber) {
	s.subs = append(s.subs, sub)
}

// AddItem adds quantity units of the product with the chosen size and color.
// When a line with the same (product id, size, color) key already exists its
// quantity is incremented; otherwise a new line with a fresh surrogate id is
// appended. Size and color are taken as given: validating them against the
// product's variant lists is the caller's concern. Returns the new line-item
// list.
func (s *Store) AddItem(ctx context.Context, product domain.Product, quantity int, size, color string) []domain.LineItem {
	if quantity < 1 {
		quantity = 1
	}

	if i := s.cart.FindLineIndex(product.ID, size, color); i >= 0 {
		s.cart.Items[i].Quantity += quantity
	} else {
		s.cart.Items = append(s.cart.Items, domain.LineItem{
			ID:       uuid.New().String(),
			Product:  product,
			Quantity: quantity,
			Size:     size,
			Color:    color,
		})
	}

	s.persist(ctx)
	s.notify(ctx)
	return s.Items()
}

// RemoveItem removes the line item with the given surrogate id. Removing an
// absent id is a no-op.
func (s *Store) RemoveItem(ctx context.Context, lineItemID string) {
	i := s.cart.FindByID(lineItemID)
	if i < 0 {
		return
	}

	s.cart.Items = append(s.cart.Items[:i], s.cart.Items[i+1:]...)
	s.persist(ctx)
	s.notify(ctx)
}

// UpdateQuantity sets the line's quantity to exactly quantity. A quantity
// below 1 removes the line, same as RemoveItem. Updating an absent id is a
// no-op.
func (s *Store) UpdateQuantity(ctx context.Context, lineItemID string, quantity int) {
	if quantity < 1 {
		s.RemoveItem(ctx, lineItemID)
		return
	}

	i := s.cart.FindByID(lineItemID)
	if i < 0 {
		return
	}

	s.cart.Items[i].Quantity = quantity
	s.persist(ctx)
	s.notify(ctx)
}

// Clear empties the cart unconditionally and drops the persisted slot.
func (s *Store) Clear(ctx context.Context) {
	s.cart.Items = nil

	if err := s.storage.Delete(ctx, s.key); err != nil {
		s.logger.WarnContext(ctx, "cart slot delete failed",
			slog.String("session_id", s.sessionID),
			slog.String("error", err.Error()),
		)
	}
	s.notify(ctx)
}

// Items returns a copy of the line-item list in insertion order.
func (s *Store) Items() []domain.LineItem {
	items := make([]domain.LineItem, len(s.cart.Items))
	copy(items, s.cart.Items)
	return items
}

// Subtotal is the derived cart total: effective unit price times quantity,
// summed over all lines.
func (s *Store) Subtotal() float64 {
	return s.cart.Subtotal()
}

// ItemCount is the derived sum of quantities across all lines.
func (s *Store) ItemCount() int {
	return s.cart.ItemCount()
}

// Snapshot returns the current read-only view of the cart.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		SessionID: s.sessionID,
		Items:     s.Items(),
		Subtotal:  s.Subtotal(),
		ItemCount: s.ItemCount(),
	}
}

// persist writes the full line-item list to durable storage. Failures are
// logged and swallowed: the in-memory cart stays authoritative, it just will
// not survive a reload.
func (s *Store) persist(ctx context.Context) {
	items := s.cart.Items
	if items == nil {
		items = []domain.LineItem{}
	}

	data, err := json.Marshal(items)
	if err != nil {
		s.logger.WarnContext(ctx, "cart serialization failed",
			slog.String("session_id", s.sessionID),
			slog.String("error", err.Error()),
		)
		return
	}

	if err := s.storage.Set(ctx, s.key, string(data)); err != nil {
		s.logger.WarnContext(ctx, "cart not persisted",
			slog.String("session_id", s.sessionID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *Store) notify(ctx context.Context) {
	if len(s.subs) == 0 {
		return
	}
	snap := s.Snapshot()
	for _, sub := range s.subs {
		sub(ctx, snap)
	}
}
