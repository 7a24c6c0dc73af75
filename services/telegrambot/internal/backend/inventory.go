package backend

import (
	"context"
	"net/http"
	"net/url"
)

type InventoryClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewInventoryClient(inventoryURL string) *InventoryClient {
	return &InventoryClient{baseURL: inventoryURL, httpClient: newHTTPClient()}
}

type Item struct {
	ID       string  `json:"id"`
	SKU      string  `json:"sku"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	IsActive bool    `json:"isActive"`
}

type StockLevel struct {
	ItemID   string `json:"itemId"`
	BranchID string `json:"branchId"`
	Quantity int    `json:"quantity"`
	Reserved int    `json:"reserved"`
}

type itemList struct {
	Items []Item `json:"items"`
	Total int64  `json:"total"`
}

func (c *InventoryClient) SearchItems(ctx context.Context, accessToken, query string) ([]Item, error) {
	u := c.baseURL + "/inventory/items/search?q=" + url.QueryEscape(query)
	var out itemList
	if err := doJSON(ctx, c.httpClient, http.MethodGet, u, accessToken, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// Stock is a staff view; the inventory gate rejects customers with
// INSUFFICIENT_PERMISSIONS and the bot relays that as-is.
func (c *InventoryClient) Stock(ctx context.Context, accessToken, itemID string) ([]StockLevel, error) {
	u := c.baseURL + "/inventory/stock?itemId=" + url.QueryEscape(itemID)
	var out []StockLevel
	if err := doJSON(ctx, c.httpClient, http.MethodGet, u, accessToken, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
