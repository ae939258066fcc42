package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hatbazar/storefront/internal/reseller"
)

// ResellerHandler serves the reseller share-link endpoints.
type ResellerHandler struct {
	baseURL string
	catalog ProductFetcher
	logger  *slog.Logger
}

// NewResellerHandler creates a reseller HTTP handler. baseURL is the public
// storefront URL share links point at.
func NewResellerHandler(baseURL string, catalog ProductFetcher, logger *slog.Logger) *ResellerHandler {
	return &ResellerHandler{baseURL: baseURL, catalog: catalog, logger: logger}
}

// ShareLinkResponse is the payload returned by ShareLink.
type ShareLinkResponse struct {
	ProductID string  `json:"product_id"`
	Link      string  `json:"link"`
	Token     string  `json:"token,omitempty"`
	Price     float64 `json:"price"`
}

// ShareLink handles GET /api/v1/reseller/link?product_id=...&reseller_id=...
//
// The link embeds an opaque token carrying the reseller id and the product's
// effective price at the time the link was generated.
func (h *ResellerHandler) ShareLink(w http.ResponseWriter, r *http.Request) {
	productID := r.URL.Query().Get("product_id")
	resellerID := r.URL.Query().Get("reseller_id")
	if productID == "" || resellerID == "" {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "product_id and reseller_id are required"},
		})
		return
	}

	product, err := h.catalog.Product(r.Context(), productID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	price := product.EffectivePrice()
	token := reseller.Encode(resellerID, price)

	link := fmt.Sprintf("%s/product/%s", h.baseURL, productID)
	if token != "" {
		link = fmt.Sprintf("%s?rt=%s", link, token)
	}

	writeJSON(w, http.StatusOK, response{Data: ShareLinkResponse{
		ProductID: productID,
		Link:      link,
		Token:     token,
		Price:     price,
	}})
}

// Attribution handles GET /api/v1/reseller/attribution?token=...
//
// Garbage, tampered, or missing tokens resolve to a null payload rather than
// an error; the storefront renders the regular price in that case.
func (h *ResellerHandler) Attribution(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	payload := reseller.Decode(token)
	if payload == nil {
		writeJSON(w, http.StatusOK, response{Data: nil})
		return
	}

	writeJSON(w, http.StatusOK, response{Data: payload})
}
