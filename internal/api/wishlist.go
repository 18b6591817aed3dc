package api

import (
	"context"
	"net/http"

	"github.com/inspitereno-lang/entebhoomi/internal/normalize"
)

// FetchWishlist returns the user's liked products.
func (c *Client) FetchWishlist(ctx context.Context) ([]normalize.WishlistItem, error) {
	var out struct {
		envelope
		Data []normalize.WishlistItem `json:"data"`
	}

	err := c.doJSON(ctx, RequestOpts{
		Method: http.MethodGet,
		Path:   "/likes",
	}, &out)
	if err != nil {
		return nil, err
	}
	if err := out.ok(); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// AddToWishlist likes a product.
func (c *Client) AddToWishlist(ctx context.Context, productID string) error {
	var out struct{ envelope }

	err := c.doJSON(ctx, RequestOpts{
		Method: http.MethodPost,
		Path:   "/likes",
		Body:   map[string]any{"productId": productID},
	}, &out)
	if err != nil {
		return err
	}
	return out.ok()
}

// RemoveFromWishlist unlikes a product.
func (c *Client) RemoveFromWishlist(ctx context.Context, productID string) error {
	var out struct{ envelope }

	err := c.doJSON(ctx, RequestOpts{
		Method: http.MethodDelete,
		Path:   "/likes/" + productID,
	}, &out)
	if err != nil {
		return err
	}
	return out.ok()
}
