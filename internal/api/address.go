package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/inspitereno-lang/entebhoomi/internal/models"
)

// addressPayload is the backend's address write shape: numeric pincode and
// phone, with regional defaults for the optional locality fields.
func addressPayload(a models.Address) map[string]any {
	addrType := a.Type
	if addrType == "" {
		addrType = models.AddressTypeHome
	}

	return map[string]any{
		"name":        a.Name,
		"addressType": addrType,
		"fullAddress": a.FullAddress,
		"city":        withDefault(a.City, "Kochi"),
		"district":    withDefault(a.District, "Ernakulam"),
		"state":       withDefault(a.State, "Kerala"),
		"pincode":     atoiOrZero(a.Pincode),
		"landmark":    a.Landmark,
		"phoneNumber": atoiOrZero(DigitsOnly(a.Phone)),
		"isDefault":   a.IsDefault,
	}
}

// AddAddress creates a delivery address.
func (c *Client) AddAddress(ctx context.Context, a models.Address) error {
	var out struct{ envelope }

	err := c.doJSON(ctx, RequestOpts{
		Method: http.MethodPost,
		Path:   "/user/address",
		Body:   addressPayload(a),
	}, &out)
	if err != nil {
		return err
	}
	return out.ok()
}

// UpdateAddress replaces an existing address.
func (c *Client) UpdateAddress(ctx context.Context, id string, a models.Address) error {
	var out struct{ envelope }

	err := c.doJSON(ctx, RequestOpts{
		Method: http.MethodPut,
		Path:   "/user/address/" + id,
		Body:   addressPayload(a),
	}, &out)
	if err != nil {
		return err
	}
	return out.ok()
}

// DeleteAddress removes an address.
func (c *Client) DeleteAddress(ctx context.Context, id string) error {
	var out struct{ envelope }

	err := c.doJSON(ctx, RequestOpts{
		Method: http.MethodDelete,
		Path:   "/user/address/" + id,
	}, &out)
	if err != nil {
		return err
	}
	return out.ok()
}

// SetDefaultAddress marks an address as the default; the backend clears the
// flag on every other address.
func (c *Client) SetDefaultAddress(ctx context.Context, id string) error {
	var out struct{ envelope }

	err := c.doJSON(ctx, RequestOpts{
		Method: http.MethodPatch,
		Path:   "/user/address/default/" + id,
	}, &out)
	if err != nil {
		return err
	}
	return out.ok()
}

// DigitsOnly strips everything but digits from a phone-like string.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func withDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
