package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/inspitereno-lang/entebhoomi/internal/normalize"
)

// FetchCart returns the authenticated user's cart lines. A timestamp query
// parameter defeats intermediary caching.
func (c *Client) FetchCart(ctx context.Context) ([]normalize.CartItem, error) {
	var out struct {
		envelope
		Data struct {
			Items []normalize.CartItem `json:"items"`
		} `json:"data"`
	}

	err := c.doJSON(ctx, RequestOpts{
		Method: http.MethodGet,
		Path:   "/cart",
		Query:  map[string]string{"t": fmt.Sprintf("%d", time.Now().UnixMilli())},
	}, &out)
	if err != nil {
		return nil, err
	}
	if err := out.ok(); err != nil {
		return nil, err
	}
	return out.Data.Items, nil
}

// AddToCart adds one or more products to the cart with quantity 1 each.
func (c *Client) AddToCart(ctx context.Context, productIDs ...string) error {
	var out struct{ envelope }

	err := c.doJSON(ctx, RequestOpts{
		Method: http.MethodPost,
		Path:   "/cart",
		Body:   map[string]any{"productIds": productIDs},
	}, &out)
	if err != nil {
		return err
	}
	return out.ok()
}

// UpdateCartQuantity replaces the quantity of a cart line. Quantity zero
// removes the line.
func (c *Client) UpdateCartQuantity(ctx context.Context, productID string, quantity int) error {
	var out struct{ envelope }

	err := c.doJSON(ctx, RequestOpts{
		Method: http.MethodPut,
		Path:   "/cart/update/" + productID,
		Body:   map[string]any{"quantity": quantity},
	}, &out)
	if err != nil {
		return err
	}
	return out.ok()
}

// RemoveFromCart removes a cart line by setting its quantity to zero.
func (c *Client) RemoveFromCart(ctx context.Context, productID string) error {
	return c.UpdateCartQuantity(ctx, productID, 0)
}
