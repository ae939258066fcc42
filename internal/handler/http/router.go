package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hatbazar/storefront/internal/cart"
	"github.com/hatbazar/storefront/pkg/health"
	"github.com/hatbazar/storefront/pkg/middleware"
)

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(
	carts *cart.Manager,
	catalog ProductFetcher,
	publicBaseURL string,
	healthHandler *health.Handler,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(middleware.Tracing("storefront"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Cart API endpoints
	cartHandler := NewCartHandler(carts, catalog, logger)

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(SessionFromHeader)

		r.Get("/", cartHandler.GetCart)
		r.Delete("/", cartHandler.ClearCart)

		r.Post("/items", cartHandler.AddItem)
		r.Put("/items/{itemId}", cartHandler.UpdateQuantity)
		r.Delete("/items/{itemId}", cartHandler.RemoveItem)
	})

	// Reseller share links are public; no session required.
	resellerHandler := NewResellerHandler(publicBaseURL, catalog, logger)

	r.Route("/api/v1/reseller", func(r chi.Router) {
		r.Get("/link", resellerHandler.ShareLink)
		r.Get("/attribution", resellerHandler.Attribution)
	})

	return r
}
