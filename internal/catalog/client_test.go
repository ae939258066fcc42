package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hatbazar/storefront/internal/domain"
	apperrors "github.com/hatbazar/storefront/pkg/errors"
	"github.com/hatbazar/storefront/pkg/httpclient"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	cfg := httpclient.DefaultConfig()
	cfg.RetryWaitMin = time.Millisecond
	cfg.RetryWaitMax = 5 * time.Millisecond
	hc := httpclient.NewCircuitBreakerClient(
		httpclient.New(cfg),
		httpclient.DefaultCircuitBreakerConfig("catalog-test-"+t.Name()),
		logger,
	)

	return NewClient(baseURL, hc, logger)
}

func TestProduct_Success(t *testing.T) {
	want := domain.Product{
		ID:        "prod-punjabi",
		Title:     "Cotton Punjabi",
		Price:     500,
		SalePrice: 400,
		Stock:     25,
		Sizes:     []string{"M", "L"},
		ShippingFees: map[string]float64{
			domain.ShippingInside:  60,
			domain.ShippingOutside: 120,
		},
		CashOnDelivery: true,
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/products/prod-punjabi", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"data": want})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	got, err := c.Product(context.Background(), "prod-punjabi")

	require.NoError(t, err)
	assert.Equal(t, &want, got)
}

func TestProduct_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Product(context.Background(), "prod-missing")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestProduct_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Product(context.Background(), "prod-1")

	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)
}

func TestProduct_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Product(context.Background(), "prod-1")

	assert.Error(t, err)
}

func TestProduct_MissingData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":null}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Product(context.Background(), "prod-1")

	assert.Error(t, err)
}
