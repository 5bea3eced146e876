package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sproutify/sproutify-platform/internal/models"
)

// HTTPPusher mirrors the cart to the storefront API.
type HTTPPusher struct {
	httpClient *http.Client
	baseURL    string
}

func NewHTTPPusher(baseURL string) *HTTPPusher {
	return &HTTPPusher{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
	}
}

func (p *HTTPPusher) PushCart(ctx context.Context, token string, cart *models.ReplaceCartRequest) error {

	body, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, p.baseURL+"/api/cart", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build cart push request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("cart push failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("cart push rejected, status code: %d", resp.StatusCode)
	}

	return nil
}
