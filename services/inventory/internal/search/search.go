package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/natjoub/factory/services/inventory/internal/models"
)

const DefaultIndex = "inventory_items"

// Index keeps the item search index in sync with the database and
// serves fuzzy full-text queries over it.
type Index struct {
	ES   *elasticsearch.Client
	Name string
}

func NewClient(url, user, password string) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
		Username:  user,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch: %s: %s", res.Status(), body)
	}
	return client, nil
}

func (i *Index) IndexItem(ctx context.Context, item *models.InventoryItem) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}

	res, err := i.ES.Index(
		i.Name,
		bytes.NewReader(data),
		i.ES.Index.WithContext(ctx),
		i.ES.Index.WithDocumentID(item.ID.String()),
	)
	if err != nil {
		return fmt.Errorf("index item: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index item: %s", res.Status())
	}
	return nil
}

func (i *Index) DeleteItem(ctx context.Context, id string) error {
	res, err := i.ES.Delete(i.Name, id, i.ES.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	defer res.Body.Close()
	// Deleting a never-indexed document is not an error.
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete item: %s", res.Status())
	}
	return nil
}

// Search runs a fuzzy multi-match over name, sku and description.
func (i *Index) Search(ctx context.Context, query string, from, size int) (int64, []models.InventoryItem, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^2", "sku^2", "description"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("encode query: %w", err)
	}

	res, err := i.ES.Search(
		i.ES.Search.WithContext(ctx),
		i.ES.Search.WithIndex(i.Name),
		i.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.InventoryItem `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("decode response: %w", err)
	}

	items := make([]models.InventoryItem, len(r.Hits.Hits))
	for idx, hit := range r.Hits.Hits {
		items[idx] = hit.Source
	}
	return r.Hits.Total.Value, items, nil
}
