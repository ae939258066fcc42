package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/hatbazar/storefront/internal/cart"
	"github.com/hatbazar/storefront/internal/domain"
	apperrors "github.com/hatbazar/storefront/pkg/errors"
	"github.com/hatbazar/storefront/pkg/validator"
)

// ProductFetcher is the slice of the catalog client the cart handler needs.
type ProductFetcher interface {
	Product(ctx context.Context, id string) (*domain.Product, error)
}

// CartHandler serves the session cart endpoints.
type CartHandler struct {
	carts   *cart.Manager
	catalog ProductFetcher
	logger  *slog.Logger
}

// NewCartHandler creates a cart HTTP handler.
func NewCartHandler(carts *cart.Manager, catalog ProductFetcher, logger *slog.Logger) *CartHandler {
	return &CartHandler{carts: carts, catalog: catalog, logger: logger}
}

// AddItemRequest is the JSON body for adding an item to the cart.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

// UpdateQuantityRequest is the JSON body for setting an item's quantity.
// A quantity below 1 removes the line item.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sid, _ := sessionIDFromContext(r.Context())
	store := h.carts.Session(r.Context(), sid)
	writeJSON(w, http.StatusOK, response{Data: store.Snapshot()})
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sid, _ := sessionIDFromContext(r.Context())

	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	product, err := h.catalog.Product(r.Context(), req.ProductID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	// Variant and stock checks live here, not in the store: the store takes
	// whatever it is given.
	if verr := validateSelection(product, req); verr != nil {
		writeError(w, r, h.logger, verr)
		return
	}

	store := h.carts.Session(r.Context(), sid)
	store.AddItem(r.Context(), *product, req.Quantity, req.Size, req.Color)

	writeJSON(w, http.StatusOK, response{Data: store.Snapshot()})
}

// UpdateQuantity handles PUT /api/v1/cart/items/{itemId}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	sid, _ := sessionIDFromContext(r.Context())

	itemID := chi.URLParam(r, "itemId")
	if itemID == "" {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "itemId is required"},
		})
		return
	}

	var req UpdateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	store := h.carts.Session(r.Context(), sid)
	store.UpdateQuantity(r.Context(), itemID, req.Quantity)

	writeJSON(w, http.StatusOK, response{Data: store.Snapshot()})
}

// RemoveItem handles DELETE /api/v1/cart/items/{itemId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sid, _ := sessionIDFromContext(r.Context())

	itemID := chi.URLParam(r, "itemId")
	if itemID == "" {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "itemId is required"},
		})
		return
	}

	store := h.carts.Session(r.Context(), sid)
	store.RemoveItem(r.Context(), itemID)

	writeJSON(w, http.StatusOK, response{Data: store.Snapshot()})
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sid, _ := sessionIDFromContext(r.Context())

	store := h.carts.Session(r.Context(), sid)
	store.Clear(r.Context())

	writeJSON(w, http.StatusOK, response{Data: store.Snapshot()})
}

func validateSelection(product *domain.Product, req AddItemRequest) error {
	if product.Stock <= 0 {
		return apperrors.InvalidInput("product is out of stock")
	}
	if len(product.Sizes) > 0 && !slices.Contains(product.Sizes, req.Size) {
		return apperrors.InvalidInput("size must be one of the product's sizes")
	}
	if len(product.Colors) > 0 && !slices.Contains(product.Colors, req.Color) {
		return apperrors.InvalidInput("color must be one of the product's colors")
	}
	return nil
}
