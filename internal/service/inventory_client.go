package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"order-placement-service/internal/models"
	"order-placement-service/internal/util"

	"go.uber.org/zap"
)

// InventoryClient queries the inventory service over HTTP
type InventoryClient struct {
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewInventoryClient creates a client for endpoint. timeout bounds a whole
// lookup including reading the body; zero means no client-side limit.
func NewInventoryClient(endpoint string, timeout time.Duration) *InventoryClient {
	return &InventoryClient{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		logger:     util.GetLogger(),
	}
}

// CheckStock asks which of skuCodes are in stock:
// GET <endpoint>?skuCode=A&skuCode=B -> [{"skuCode":"A","inStock":true}, ...]
func (ic *InventoryClient) CheckStock(ctx context.Context, skuCodes []string) ([]models.InventoryResponse, error) {
	u, err := url.Parse(ic.endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: bad endpoint: %w", ErrInventoryUnavailable, err)
	}
	q := u.Query()
	for _, sku := range skuCodes {
		q.Add("skuCode", sku)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInventoryUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range util.InjectTraceContext(ctx) {
		req.Header.Set(k, v)
	}

	resp, err := ic.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInventoryUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: unexpected status %d", ErrInventoryUnavailable, resp.StatusCode)
	}

	var stock []models.InventoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&stock); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrInventoryUnavailable, ctx.Err())
		}
		return nil, fmt.Errorf("%w: %w", ErrMalformedInventoryResponse, err)
	}

	ic.logger.Debug("Inventory lookup completed",
		zap.Strings("sku_codes", skuCodes),
		zap.Int("entries", len(stock)))

	return stock, nil
}
