package models

import "time"

// DefaultBulkThreshold is applied when the backend omits a per-product
// threshold. Quantities strictly above the threshold are treated as bulk.
const DefaultBulkThreshold = 20

// Product is the client-side view of a catalog product.
type Product struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Image    string  `json:"image"`
	Category string  `json:"category"`
	Shop     string  `json:"shop"`
}

// CartItem is one line of the cart. Quantity is always positive while the
// item is present; a quantity of zero or less means removal.
type CartItem struct {
	Product       Product `json:"product"`
	Quantity      int     `json:"quantity"`
	TotalPrice    float64 `json:"totalPrice"`
	BulkThreshold int     `json:"bulkThreshold"`
}

// EffectiveBulkThreshold returns the per-product threshold, falling back to
// the package default when the backend did not provide one.
func (i CartItem) EffectiveBulkThreshold() int {
	if i.BulkThreshold > 0 {
		return i.BulkThreshold
	}
	return DefaultBulkThreshold
}

// IsBulk reports whether this line crosses the bulk-order boundary.
func (i CartItem) IsBulk() bool {
	return i.Quantity > i.EffectiveBulkThreshold()
}

// Cart is the full cart with derived totals.
type Cart []CartItem

// Total is the sum of price times quantity over all lines.
func (c Cart) Total() float64 {
	var sum float64
	for _, item := range c {
		sum += item.Product.Price * float64(item.Quantity)
	}
	return sum
}

// Count is the total number of units across all lines.
func (c Cart) Count() int {
	var n int
	for _, item := range c {
		n += item.Quantity
	}
	return n
}

// Find returns the line for the given product id, if present.
func (c Cart) Find(productID string) (CartItem, bool) {
	for _, item := range c {
		if item.Product.ID == productID {
			return item, true
		}
	}
	return CartItem{}, false
}

// Split partitions the cart into regular and bulk lines by each item's
// effective threshold. The partition decides the payment path, not just
// display.
func (c Cart) Split() (regular, bulk Cart) {
	for _, item := range c {
		if item.IsBulk() {
			bulk = append(bulk, item)
		} else {
			regular = append(regular, item)
		}
	}
	return regular, bulk
}

// Clone returns a value copy usable as a rollback snapshot.
func (c Cart) Clone() Cart {
	if c == nil {
		return nil
	}
	snapshot := make(Cart, len(c))
	copy(snapshot, c)
	return snapshot
}

// Order item statuses, independently mutable per item.
const (
	ItemStatusPending   = "Pending"
	ItemStatusAccepted  = "Accepted"
	ItemStatusDelivered = "Delivered"
	ItemStatusCancelled = "Cancelled"
	ItemStatusRejected  = "Rejected"
)

// OrderItem is one line of a placed order.
type OrderItem struct {
	ProductID string  `json:"productId"`
	Status    string  `json:"status"`
	IsBulk    bool    `json:"isBulk"`
	Product   Product `json:"product"`
	Quantity  int     `json:"quantity"`
}

// Refund records a refund issued against an order.
type Refund struct {
	Amount    float64   `json:"amount"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"createdAt"`
}

// Order is the client-side view of a placed order.
type Order struct {
	ID              string      `json:"id"`
	OrderID         string      `json:"orderId"`
	OrderDate       time.Time   `json:"orderDate"`
	Status          string      `json:"status"`
	Items           []OrderItem `json:"items"`
	Subtotal        float64     `json:"subtotal"`
	RegularAmount   float64     `json:"regularAmount"`
	BulkAmount      float64     `json:"bulkAmount"`
	IsBulkOrder     bool        `json:"isBulkOrder"`
	TransportMode   string      `json:"transportMode"`
	DeliveryFee     float64     `json:"deliveryFee"`
	Taxes           float64     `json:"taxes"`
	Total           float64     `json:"total"`
	DeliveryAddress Address     `json:"deliveryAddress"`
	PaymentStatus   string      `json:"paymentStatus"`
	PaymentMethod   string      `json:"paymentMethod"`
	Refunds         []Refund    `json:"refunds"`
}

// Address types accepted by the backend.
const (
	AddressTypeHome  = "home"
	AddressTypeWork  = "work"
	AddressTypeOther = "other"
)

// Address is a delivery address. At most one address is default at a time;
// the backend enforces the invariant.
type Address struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	FullAddress string `json:"fullAddress"`
	City        string `json:"city"`
	District    string `json:"district"`
	State       string `json:"state"`
	Pincode     string `json:"pincode"`
	Landmark    string `json:"landmark"`
	Phone       string `json:"phone"`
	IsDefault   bool   `json:"isDefault"`
}

// User is the authenticated customer profile.
type User struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// Store is a vendor storefront on the marketplace.
type Store struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	District string `json:"district"`
	Image    string `json:"image"`
}
