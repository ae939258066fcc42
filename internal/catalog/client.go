package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/hatbazar/storefront/internal/domain"
	apperrors "github.com/hatbazar/storefront/pkg/errors"
	"github.com/hatbazar/storefront/pkg/httpclient"
)

// Client reads product records from the catalog service. The cart treats
// every returned field as already validated by the catalog; the client only
// fetches and decodes.
type Client struct {
	baseURL string
	http    *httpclient.CircuitBreakerClient
	logger  *slog.Logger
}

// NewClient creates a catalog client for the given base URL.
func NewClient(baseURL string, hc *httpclient.CircuitBreakerClient, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
		logger:  logger,
	}
}

type productEnvelope struct {
	Data *domain.Product `json:"data"`
}

// Product fetches the current product record by id.
func (c *Client) Product(ctx context.Context, id string) (*domain.Product, error) {
	endpoint := fmt.Sprintf("%s/api/v1/products/%s", c.baseURL, url.PathEscape(id))

	resp, err := c.http.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("catalog request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperrors.NotFound("product", id)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("catalog returned status %d: %w", resp.StatusCode, apperrors.ErrServiceUnavail)
	}

	var envelope productEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode product response: %w", err)
	}
	if envelope.Data == nil {
		return nil, fmt.Errorf("catalog response missing product data: %w", apperrors.ErrInternal)
	}

	return envelope.Data, nil
}
