package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/inspitereno-lang/entebhoomi/internal/normalize"
)

// FetchProducts lists catalog products. A limit of zero uses the backend
// default page size.
func (c *Client) FetchProducts(ctx context.Context, limit int) ([]normalize.ProductRef, error) {
	var query map[string]string
	if limit > 0 {
		query = map[string]string{"limit": strconv.Itoa(limit)}
	}

	var out struct {
		envelope
		Data []normalize.ProductRef `json:"data"`
	}

	err := c.doJSON(ctx, RequestOpts{
		Method: http.MethodGet,
		Path:   "/products",
		Query:  query,
	}, &out)
	if err != nil {
		return nil, err
	}
	if err := out.ok(); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// FetchProduct returns a single product by id.
func (c *Client) FetchProduct(ctx context.Context, productID string) (*normalize.ProductRef, error) {
	var out struct {
		envelope
		Data normalize.ProductRef `json:"data"`
	}

	err := c.doJSON(ctx, RequestOpts{
		Method: http.MethodGet,
		Path:   "/products/" + productID,
	}, &out)
	if err != nil {
		return nil, err
	}
	if err := out.ok(); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// SearchProducts filters the catalog by name or store. Filtering happens
// client-side over a large page; the backend filter endpoint is unreliable.
func (c *Client) SearchProducts(ctx context.Context, query string) ([]normalize.ProductRef, error) {
	products, err := c.FetchProducts(ctx, 1000)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	matched := make([]normalize.ProductRef, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.Store), needle) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

// StoreInfo is a vendor storefront summary.
type StoreInfo struct {
	MongoID   string `json:"_id"`
	ID        string `json:"id"`
	StoreName string `json:"storeName"`
	Name      string `json:"name"`
	District  string `json:"district"`
	Image     string `json:"image"`
}

// FetchStores lists marketplace vendor stores.
func (c *Client) FetchStores(ctx context.Context) ([]StoreInfo, error) {
	var out struct {
		envelope
		Data []StoreInfo `json:"data"`
	}

	err := c.doJSON(ctx, RequestOpts{
		Method: http.MethodGet,
		Path:   "/stores",
	}, &out)
	if err != nil {
		return nil, err
	}
	if err := out.ok(); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// FetchStore returns a single store with its home-page product selection.
func (c *Client) FetchStore(ctx context.Context, storeID string) (*StoreInfo, []normalize.ProductRef, error) {
	var out struct {
		envelope
		Data struct {
			Store    StoreInfo              `json:"store"`
			Products []normalize.ProductRef `json:"products"`
		} `json:"data"`
	}

	err := c.doJSON(ctx, RequestOpts{
		Method: http.MethodGet,
		Path:   "/stores/" + storeID,
	}, &out)
	if err != nil {
		return nil, nil, err
	}
	if err := out.ok(); err != nil {
		return nil, nil, err
	}
	return &out.Data.Store, out.Data.Products, nil
}
