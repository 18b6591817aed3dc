// Package normalize maps the backend's heterogeneous response shapes into
// the single shape the rest of the client works with. Every function is
// pure and total: malformed input degrades to defaults, never to an error.
package normalize

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/inspitereno-lang/entebhoomi/internal/models"
)

// PlaceholderImage is served for products without a usable image URL.
const PlaceholderImage = "/product-placeholder.png"

// publicAssetPrefixes are frontend-bundled paths that must never be
// rewritten onto the API base.
var publicAssetPrefixes = []string{
	"/product-placeholder.png",
	"/favicon.ico",
	"/hero-",
	"/logo",
}

// Normalizer carries the API base URL needed to absolutize image paths.
type Normalizer struct {
	base    string
	baseURL *url.URL
}

// New builds a Normalizer for the given API base URL.
func New(apiBase string) *Normalizer {
	base := strings.TrimRight(apiBase, "/")
	parsed, err := url.Parse(base)
	if err != nil {
		parsed = nil
	}
	return &Normalizer{base: base, baseURL: parsed}
}

// ImageURL normalizes a raw image reference from the backend. Absolute URLs
// pass through, except localhost URLs pointing at a stale dev port, which
// are rewritten onto the API base. Bare paths are prefixed with the API
// base; known public assets and empty input map to stable local paths.
// The function is idempotent.
func (n *Normalizer) ImageURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return PlaceholderImage
	}

	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		if rewritten, ok := n.rewriteStaleLocalhost(raw); ok {
			return rewritten
		}
		return raw
	}

	// Cloudinary references occasionally arrive without a scheme.
	if strings.Contains(raw, "cloudinary.com") {
		return "https://" + raw
	}

	for _, prefix := range publicAssetPrefixes {
		if strings.HasPrefix(raw, prefix) {
			return raw
		}
	}

	if !strings.HasPrefix(raw, "/") {
		raw = "/" + raw
	}
	return n.base + raw
}

// rewriteStaleLocalhost moves a localhost URL with the wrong port onto the
// configured API base, keeping the path and query.
func (n *Normalizer) rewriteStaleLocalhost(raw string) (string, bool) {
	if n.baseURL == nil {
		return "", false
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", false
	}

	host := parsed.Hostname()
	if host != "localhost" && host != "127.0.0.1" {
		return "", false
	}
	if parsed.Host == n.baseURL.Host {
		return "", false
	}

	rebuilt := n.base + parsed.EscapedPath()
	if parsed.RawQuery != "" {
		rebuilt += "?" + parsed.RawQuery
	}
	return rebuilt, true
}

// CartItems maps backend cart lines into the client cart shape.
func (n *Normalizer) CartItems(items []CartItem) models.Cart {
	cart := make(models.Cart, 0, len(items))
	for _, item := range items {
		quantity := item.Quantity
		if quantity <= 0 {
			quantity = 1
		}

		name := item.ProductName
		if name == "" {
			name = "Product"
		}

		shop := item.StoreName
		if shop == "" {
			shop = "Store"
		}

		total := item.TotalPrice
		if total == 0 {
			total = item.Price * float64(quantity)
		}

		threshold := item.BulkThreshold
		if threshold <= 0 {
			threshold = models.DefaultBulkThreshold
		}

		cart = append(cart, models.CartItem{
			Product: models.Product{
				ID:       item.ProductID,
				Name:     name,
				Price:    item.Price,
				Image:    n.ImageURL(item.Image),
				Category: "General",
				Shop:     shop,
			},
			Quantity:      quantity,
			TotalPrice:    total,
			BulkThreshold: threshold,
		})
	}
	return cart
}

// Orders maps backend orders into the client order shape. Items nested in
// vendorOrders are flattened when the flat list is absent.
func (n *Normalizer) Orders(orders []Order) []models.Order {
	result := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		result = append(result, n.Order(o))
	}
	return result
}

// Order maps a single backend order.
func (n *Normalizer) Order(o Order) models.Order {
	id := firstNonEmpty(o.MongoID, o.ID)

	displayID := firstNonEmpty(o.OrderID, o.RazorpayOrderID)
	if displayID == "" {
		displayID = fallbackOrderCode(id)
	}

	items := o.Items
	if len(items) == 0 {
		for _, vo := range o.VendorOrders {
			items = append(items, vo.Items...)
		}
	}

	total := o.TotalAmount
	if total == 0 {
		total = o.Amount
	}

	subtotal := o.Subtotal
	if subtotal == 0 {
		subtotal = total
	}

	address := models.Address{
		Type:        "Delivery",
		FullAddress: "Address not available",
	}
	if o.Address.Present {
		address.FullAddress = o.Address.FullAddress
		address.Landmark = o.Address.Landmark
		if o.Address.Type != "" {
			address.Type = o.Address.Type
		}
	}

	order := models.Order{
		ID:              id,
		OrderID:         displayID,
		OrderDate:       parseTime(o.CreatedAt),
		Status:          firstNonEmpty(o.OrderStatus, o.Status, models.ItemStatusPending),
		Subtotal:        subtotal,
		RegularAmount:   o.RegularAmount,
		BulkAmount:      o.BulkAmount,
		IsBulkOrder:     o.IsBulkOrder,
		TransportMode:   firstNonEmpty(o.TransportMode, "Delivery Team"),
		DeliveryFee:     o.DeliveryFee,
		Taxes:           o.Taxes,
		Total:           total,
		DeliveryAddress: address,
		PaymentStatus:   firstNonEmpty(o.PaymentStatus, "Pending"),
		PaymentMethod:   firstNonEmpty(o.PaymentMethod, "Online Payment (Razorpay)"),
	}

	for _, item := range items {
		order.Items = append(order.Items, n.orderItem(item))
	}

	for _, r := range o.Refunds {
		order.Refunds = append(order.Refunds, models.Refund{
			Amount:    r.Amount,
			Reason:    r.Reason,
			CreatedAt: parseTime(r.CreatedAt),
		})
	}

	return order
}

func (n *Normalizer) orderItem(item OrderItem) models.OrderItem {
	quantity := item.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	name := firstNonEmpty(item.ProductName, item.ProductID.Name, "Product")

	price := item.Price
	if price == 0 {
		price = item.ProductID.Price
	}

	return models.OrderItem{
		ProductID: item.ProductID.ID,
		Status:    firstNonEmpty(item.Status, models.ItemStatusPending),
		IsBulk:    item.IsBulk,
		Product: models.Product{
			ID:    item.ProductID.ID,
			Name:  name,
			Price: price,
			Image: n.ImageURL(firstNonEmpty(item.Image, item.ProductID.Image)),
			Shop:  item.ProductID.Store,
		},
		Quantity: quantity,
	}
}

// Addresses maps backend addresses into the client shape.
func (n *Normalizer) Addresses(addresses []Address) []models.Address {
	result := make([]models.Address, 0, len(addresses))
	for _, a := range addresses {
		addrType := firstNonEmpty(a.AddressType, a.Type, models.AddressTypeHome)
		result = append(result, models.Address{
			ID:          firstNonEmpty(a.MongoID, a.ID),
			Name:        a.Name,
			Type:        addrType,
			FullAddress: a.FullAddress,
			City:        a.City,
			District:    a.District,
			State:       a.State,
			Pincode:     a.Pincode.String(),
			Landmark:    a.Landmark,
			Phone:       firstNonEmpty(a.PhoneNumber.String(), a.Phone.String()),
			IsDefault:   a.IsDefault,
		})
	}
	return result
}

// WishlistItems maps liked products into the client product shape,
// dropping entries whose product reference is gone.
func (n *Normalizer) WishlistItems(items []WishlistItem) []models.Product {
	result := make([]models.Product, 0, len(items))
	for _, item := range items {
		p := item.ProductID
		if p.ID == "" {
			continue
		}

		name := p.Name
		if name == "" {
			name = "Unnamed Product"
		}

		category := item.Category.Name
		if category == "" {
			category = "Uncategorized"
		}

		shop := p.Store
		if shop == "" {
			shop = "Unknown Store"
		}

		result = append(result, models.Product{
			ID:       p.ID,
			Name:     name,
			Price:    p.Price,
			Image:    n.ImageURL(p.Image),
			Category: category,
			Shop:     shop,
		})
	}
	return result
}

// Product maps a catalog product payload into the client shape.
func (n *Normalizer) Product(p ProductRef) models.Product {
	name := p.Name
	if name == "" {
		name = "Product"
	}
	return models.Product{
		ID:    p.ID,
		Name:  name,
		Price: p.Price,
		Image: n.ImageURL(p.Image),
		Shop:  p.Store,
	}
}

// Products maps catalog product payloads into the client shape.
func (n *Normalizer) Products(refs []ProductRef) []models.Product {
	result := make([]models.Product, 0, len(refs))
	for _, p := range refs {
		result = append(result, n.Product(p))
	}
	return result
}

// User maps a backend profile into the client shape.
func (n *Normalizer) User(u User) models.User {
	return models.User{
		Name:  firstNonEmpty(u.FullName, u.Name),
		Phone: firstNonEmpty(u.PhoneNumber.String(), u.Phone.String()),
		Email: u.Email,
	}
}

func fallbackOrderCode(id string) string {
	if id == "" {
		return ""
	}
	tail := id
	if len(tail) > 6 {
		tail = tail[len(tail)-6:]
	}
	return fmt.Sprintf("ORD-%s", strings.ToUpper(tail))
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
