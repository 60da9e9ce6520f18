package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

// ProductClient reads the catalog from an external product service.
type ProductClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewProductClient(baseURL string, timeout time.Duration) *ProductClient {
	return &ProductClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *ProductClient) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	u := fmt.Sprintf("%s/products/%s", c.baseURL, url.PathEscape(id))
	var p domain.Product
	if err := c.get(ctx, u, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *ProductClient) List(ctx context.Context, f repository.ProductFilter) ([]domain.Product, error) {
	u := c.baseURL + "/products"
	if f.Category != "" {
		u += "?category=" + url.QueryEscape(string(f.Category))
	}
	var out []domain.Product
	if err := c.get(ctx, u, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ProductClient) get(ctx context.Context, u string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return repository.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("product service returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}
