package cart

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hatbazar/storefront/internal/domain"
	"github.com/hatbazar/storefront/internal/storage/memory"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestStore(t *testing.T) (*Store, *memory.Storage) {
	t.Helper()
	st := memory.New()
	return NewStore(context.Background(), st, "sess-1", newTestLogger()), st
}

func punjabi() domain.Product {
	return domain.Product{
		ID:        "prod-punjabi",
		Title:     "Cotton Punjabi",
		Price:     500,
		SalePrice: 400,
		Category:  "menswear",
		Stock:     25,
		Sizes:     []string{"M", "L", "XL"},
		Colors:    []string{"white", "blue"},
		ShippingFees: map[string]float64{
			domain.ShippingInside:  60,
			domain.ShippingOutside: 120,
		},
		CashOnDelivery: true,
	}
}

func saree() domain.Product {
	return domain.Product{
		ID:       "prod-saree",
		Title:    "Jamdani Saree",
		Price:    200,
		Category: "womenswear",
		Stock:    10,
	}
}

// ---------------------------------------------------------------------------
// AddItem
// ---------------------------------------------------------------------------

func TestAddItem_AppendsNewLine(t *testing.T) {
	s, _ := newTestStore(t)

	items := s.AddItem(context.Background(), punjabi(), 2, "M", "white")

	require.Len(t, items, 1)
	assert.NotEmpty(t, items[0].ID)
	assert.Equal(t, "prod-punjabi", items[0].Product.ID)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, "M", items[0].Size)
	assert.Equal(t, "white", items[0].Color)
}

func TestAddItem_MergesOnNaturalKey(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	s.AddItem(ctx, punjabi(), 2, "M", "white")
	items := s.AddItem(ctx, punjabi(), 3, "M", "white")

	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestAddItem_DifferentVariantsStayDistinct(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	s.AddItem(ctx, punjabi(), 1, "M", "white")
	s.AddItem(ctx, punjabi(), 1, "L", "white")
	items := s.AddItem(ctx, punjabi(), 1, "M", "blue")

	require.Len(t, items, 3)
	assert.NotEqual(t, items[0].ID, items[1].ID)
	assert.NotEqual(t, items[0].ID, items[2].ID)

	// Each line is independently addressable.
	s.RemoveItem(ctx, items[1].ID)
	remaining := s.Items()
	require.Len(t, remaining, 2)
	assert.Equal(t, "M", remaining[0].Size)
	assert.Equal(t, "blue", remaining[1].Color)
}

func TestAddItem_UnrecognizedVariantDoesNotCrash(t *testing.T) {
	s, _ := newTestStore(t)

	// Validation is a presentation-layer concern; the store takes the value
	// as given and must not reject or panic.
	items := s.AddItem(context.Background(), punjabi(), 1, "XXXL", "magenta")

	require.Len(t, items, 1)
	assert.Equal(t, "XXXL", items[0].Size)
}

func TestAddItem_NonPositiveQuantityClampedToOne(t *testing.T) {
	s, _ := newTestStore(t)

	items := s.AddItem(context.Background(), saree(), 0, "", "")

	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)
}

func TestAddItem_PreservesInsertionOrder(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	s.AddItem(ctx, saree(), 1, "", "")
	s.AddItem(ctx, punjabi(), 1, "M", "white")
	// Merging must not reorder.
	items := s.AddItem(ctx, saree(), 1, "", "")

	require.Len(t, items, 2)
	assert.Equal(t, "prod-saree", items[0].Product.ID)
	assert.Equal(t, "prod-punjabi", items[1].Product.ID)
}

// ---------------------------------------------------------------------------
// RemoveItem / UpdateQuantity
// ---------------------------------------------------------------------------

func TestRemoveItem_AbsentIDIsNoOp(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	s.AddItem(ctx, saree(), 1, "", "")

	require.NotPanics(t, func() { s.RemoveItem(ctx, "no-such-line") })
	assert.Len(t, s.Items(), 1)
}

func TestUpdateQuantity_SetsAbsoluteValue(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	items := s.AddItem(ctx, saree(), 2, "", "")
	s.UpdateQuantity(ctx, items[0].ID, 7)

	got := s.Items()
	require.Len(t, got, 1)
	assert.Equal(t, 7, got[0].Quantity)
}

func TestUpdateQuantity_ZeroRemovesLine(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	items := s.AddItem(ctx, saree(), 2, "", "")
	s.UpdateQuantity(ctx, items[0].ID, 0)

	assert.Empty(t, s.Items())
}

func TestUpdateQuantity_NegativeRemovesLine(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	items := s.AddItem(ctx, saree(), 2, "", "")
	s.UpdateQuantity(ctx, items[0].ID, -5)

	assert.Empty(t, s.Items())
}

func TestUpdateQuantity_AbsentIDIsNoOp(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	s.AddItem(ctx, saree(), 2, "", "")
	s.UpdateQuantity(ctx, "no-such-line", 9)

	got := s.Items()
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Quantity)
}

// ---------------------------------------------------------------------------
// Derived totals
// ---------------------------------------------------------------------------

func TestSubtotal_UsesSalePriceWhenPresent(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	s.AddItem(ctx, punjabi(), 3, "M", "white") // 400 * 3
	s.AddItem(ctx, saree(), 2, "", "")         // 200 * 2

	assert.Equal(t, 1600.0, s.Subtotal())
	assert.Equal(t, 5, s.ItemCount())
}

func TestTotals_TrackMutations(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	items := s.AddItem(ctx, saree(), 2, "", "")
	assert.Equal(t, 400.0, s.Subtotal())

	s.UpdateQuantity(ctx, items[0].ID, 5)
	assert.Equal(t, 1000.0, s.Subtotal())
	assert.Equal(t, 5, s.ItemCount())

	s.RemoveItem(ctx, items[0].ID)
	assert.Zero(t, s.Subtotal())
	assert.Zero(t, s.ItemCount())
}

// ---------------------------------------------------------------------------
// Clear
// ---------------------------------------------------------------------------

func TestClear_EmptiesCartAndStorage(t *testing.T) {
	s, st := newTestStore(t)
	ctx := context.Background()

	s.AddItem(ctx, punjabi(), 2, "M", "white")
	s.Clear(ctx)

	assert.Empty(t, s.Items())
	assert.Zero(t, s.Subtotal())
	assert.Zero(t, s.ItemCount())

	// A fresh load sees an empty cart.
	reloaded := NewStore(ctx, st, "sess-1", newTestLogger())
	assert.Empty(t, reloaded.Items())
}

// ---------------------------------------------------------------------------
// Persistence
// ---------------------------------------------------------------------------

func TestPersistence_RoundTrip(t *testing.T) {
	st := memory.New()
	ctx := context.Background()

	s := NewStore(ctx, st, "sess-1", newTestLogger())
	s.AddItem(ctx, punjabi(), 3, "L", "blue")
	s.AddItem(ctx, saree(), 2, "", "")
	want := s.Items()

	reloaded := NewStore(ctx, st, "sess-1", newTestLogger())

	assert.Equal(t, want, reloaded.Items())
	assert.Equal(t, s.Subtotal(), reloaded.Subtotal())
	assert.Equal(t, s.ItemCount(), reloaded.ItemCount())
}

func TestPersistence_SessionsAreIsolated(t *testing.T) {
	st := memory.New()
	ctx := context.Background()

	NewStore(ctx, st, "sess-1", newTestLogger()).AddItem(ctx, saree(), 1, "", "")

	other := NewStore(ctx, st, "sess-2", newTestLogger())
	assert.Empty(t, other.Items())
}

func TestRestore_CorruptValueYieldsEmptyCart(t *testing.T) {
	st := memory.New()
	ctx := context.Background()
	require.NoError(t, st.Set(ctx, "hatbazar:cart:sess-1", "{not json"))

	var s *Store
	require.NotPanics(t, func() {
		s = NewStore(ctx, st, "sess-1", newTestLogger())
	})

	assert.Empty(t, s.Items())
	assert.Zero(t, s.Subtotal())
}

func TestRestore_MissingKeyYieldsEmptyCart(t *testing.T) {
	s, _ := newTestStore(t)
	assert.Empty(t, s.Items())
}

func TestPersist_WritesValidJSON(t *testing.T) {
	s, st := newTestStore(t)
	ctx := context.Background()

	s.AddItem(ctx, punjabi(), 1, "M", "white")

	raw, err := st.Get(ctx, "hatbazar:cart:sess-1")
	require.NoError(t, err)

	var items []domain.LineItem
	require.NoError(t, json.Unmarshal([]byte(raw), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Cotton Punjabi", items[0].Product.Title)
}

// failingStorage rejects every write but serves reads from nothing.
type failingStorage struct{}

func (failingStorage) Get(context.Context, string) (string, error) {
	return "", errors.New("storage offline")
}
func (failingStorage) Set(context.Context, string, string) error {
	return errors.New("quota exceeded")
}
func (failingStorage) Delete(context.Context, string) error {
	return errors.New("storage offline")
}

func TestStorageFailures_InMemoryStateStaysAuthoritative(t *testing.T) {
	ctx := context.Background()

	var s *Store
	require.NotPanics(t, func() {
		s = NewStore(ctx, failingStorage{}, "sess-1", newTestLogger())
	})

	items := s.AddItem(ctx, saree(), 2, "", "")
	require.Len(t, items, 1)
	assert.Equal(t, 400.0, s.Subtotal())

	s.UpdateQuantity(ctx, items[0].ID, 3)
	assert.Equal(t, 600.0, s.Subtotal())

	require.NotPanics(t, func() { s.Clear(ctx) })
	assert.Empty(t, s.Items())
}

// ---------------------------------------------------------------------------
// Subscribers
// ---------------------------------------------------------------------------

func TestSubscribe_NotifiedSynchronouslyOnEveryMutation(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	var snaps []Snapshot
	s.Subscribe(func(_ context.Context, snap Snapshot) {
		snaps = append(snaps, snap)
	})

	items := s.AddItem(ctx, saree(), 2, "", "")
	s.UpdateQuantity(ctx, items[0].ID, 4)
	s.RemoveItem(ctx, items[0].ID)
	s.Clear(ctx)

	require.Len(t, snaps, 4)
	assert.Equal(t, "sess-1", snaps[0].SessionID)
	assert.Equal(t, 2, snaps[0].ItemCount)
	assert.Equal(t, 4, snaps[1].ItemCount)
	assert.Zero(t, snaps[2].ItemCount)
	assert.Zero(t, snaps[3].ItemCount)
	assert.Equal(t, 800.0, snaps[1].Subtotal)
}

// ---------------------------------------------------------------------------
// Manager
// ---------------------------------------------------------------------------

func TestManager_SessionRestoresPersistedCart(t *testing.T) {
	st := memory.New()
	m := NewManager(st, newTestLogger())
	ctx := context.Background()

	m.Session(ctx, "sess-1").AddItem(ctx, saree(), 2, "", "")

	again := m.Session(ctx, "sess-1")
	assert.Equal(t, 2, again.ItemCount())
}

func TestManager_SubscribersAttachToEverySession(t *testing.T) {
	m := NewManager(memory.New(), newTestLogger())
	ctx := context.Background()

	var notified int
	m.Subscribe(func(context.Context, Snapshot) { notified++ })

	m.Session(ctx, "sess-1").AddItem(ctx, saree(), 1, "", "")
	m.Session(ctx, "sess-2").AddItem(ctx, saree(), 1, "", "")

	assert.Equal(t, 2, notified)
}
