package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/relove/backend/internal/domain/catalog"
	"github.com/relove/backend/internal/domain/shared"
	"github.com/relove/backend/internal/infrastructure/config"
)

// maxResponseSize limits the response body size to prevent memory exhaustion
const maxResponseSize = 1 * 1024 * 1024 // 1MB max response

// Client talks to the core marketplace service that owns product
// listings and seller accounts. The escrow engine only needs a narrow
// slice of that API: flipping listings between sold and active, and
// resolving seller fee tiers and payout accounts.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a marketplace client from the given configuration.
func NewClient(cfg config.MarketplaceConfig, logger *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("marketplace: base URL is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}, nil
}

// MarkSold removes a listing from sale after payment confirmation.
func (c *Client) MarkSold(ctx context.Context, productID uuid.UUID) error {
	path := fmt.Sprintf("/internal/listings/%s/mark-sold", productID)
	_, err := c.doRequest(ctx, http.MethodPost, path)
	return err
}

// MarkActive returns a listing to sale after cancellation or expiry.
func (c *Client) MarkActive(ctx context.Context, productID uuid.UUID) error {
	path := fmt.Sprintf("/internal/listings/%s/mark-active", productID)
	_, err := c.doRequest(ctx, http.MethodPost, path)
	return err
}

// feeTierResponse is the payload of the seller fee-tier endpoint.
type feeTierResponse struct {
	SellerID string `json:"seller_id"`
	FeeTier  string `json:"fee_tier"`
}

// FeeTier returns the seller's current fee tier.
func (c *Client) FeeTier(ctx context.Context, sellerID uuid.UUID) (catalog.FeeTier, error) {
	path := fmt.Sprintf("/internal/sellers/%s/fee-tier", sellerID)
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return "", err
	}

	var resp feeTierResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("marketplace: failed to parse fee tier response: %w", err)
	}

	tier := catalog.FeeTier(resp.FeeTier)
	if !tier.IsValid() {
		return "", fmt.Errorf("marketplace: unknown fee tier %q for seller %s", resp.FeeTier, sellerID)
	}
	return tier, nil
}

// payoutAccountResponse is the payload of the seller payout-account endpoint.
type payoutAccountResponse struct {
	SellerID      string `json:"seller_id"`
	PayoutAccount string `json:"payout_account"`
}

// PayoutAccount returns the seller's gateway account reference.
func (c *Client) PayoutAccount(ctx context.Context, sellerID uuid.UUID) (string, error) {
	path := fmt.Sprintf("/internal/sellers/%s/payout-account", sellerID)
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return "", err
	}

	var resp payoutAccountResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("marketplace: failed to parse payout account response: %w", err)
	}

	if resp.PayoutAccount == "" {
		return "", fmt.Errorf("marketplace: seller %s has no payout account on file", sellerID)
	}
	return resp.PayoutAccount, nil
}

// doRequest performs an HTTP request against the marketplace API and
// returns the response body. A 404 maps to shared.ErrNotFound so the
// application layer can treat missing listings and sellers uniformly.
func (c *Client) doRequest(ctx context.Context, method, path string) ([]byte, error) {
	url := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("marketplace: failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("marketplace: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("marketplace: failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, shared.ErrNotFound
	case resp.StatusCode >= 400:
		c.logger.Warn("marketplace request rejected",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("marketplace: %s %s returned HTTP %d", method, path, resp.StatusCode)
	}

	return body, nil
}

// Ensure Client implements the catalog ports
var (
	_ catalog.ProductCatalog  = (*Client)(nil)
	_ catalog.SellerDirectory = (*Client)(nil)
)
