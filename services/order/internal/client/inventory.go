package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// InventoryClient fetches item facts from the inventory service. Order
// totals are always computed from these server-side prices, never from
// anything the customer sends.
type InventoryClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewInventoryClient(inventoryURL string) *InventoryClient {
	return &InventoryClient{
		baseURL: inventoryURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

type Item struct {
	ID       string  `json:"id"`
	SKU      string  `json:"sku"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	IsActive bool    `json:"isActive"`
}

var ErrItemNotFound = fmt.Errorf("item not found")

type itemEnvelope struct {
	Success bool  `json:"success"`
	Data    *Item `json:"data"`
}

// GetItem forwards the caller's bearer token; the inventory service's
// own gate decides whether the caller may read the catalog.
func (c *InventoryClient) GetItem(ctx context.Context, itemID, bearerToken string) (*Item, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		fmt.Sprintf("%s/inventory/items/%s", c.baseURL, itemID),
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+bearerToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrItemNotFound
	default:
		return nil, fmt.Errorf("inventory service returned status %d", resp.StatusCode)
	}

	var env itemEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if !env.Success || env.Data == nil {
		return nil, ErrItemNotFound
	}
	return env.Data, nil
}
