package backend

import (
	"context"
	"net/http"
)

type OrderClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewOrderClient(orderURL string) *OrderClient {
	return &OrderClient{baseURL: orderURL, httpClient: newHTTPClient()}
}

type OrderItem struct {
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	Subtotal  float64 `json:"subtotal"`
}

type Order struct {
	ID        string      `json:"id"`
	Status    string      `json:"status"`
	Total     float64     `json:"total"`
	Items     []OrderItem `json:"items"`
	CreatedAt string      `json:"createdAt"`
}

type OrderList struct {
	Orders []Order `json:"orders"`
	Total  int64   `json:"total"`
}

func (c *OrderClient) ListOrders(ctx context.Context, accessToken string) (*OrderList, error) {
	var out OrderList
	if err := doJSON(ctx, c.httpClient, http.MethodGet, c.baseURL+"/orders?limit=10", accessToken, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
