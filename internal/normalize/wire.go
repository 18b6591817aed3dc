package normalize

import (
	"encoding/json"
	"strings"
)

// Wire types mirror the payload shapes the backend actually emits, including
// the legacy alternates (Mongo-style `_id`, populated references, numeric
// fields that sometimes arrive as strings). Parsing is total: missing or
// malformed fields decode to zero values and are defaulted downstream.

// FlexString decodes a JSON string or number into a string.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexString(n.String())
		return nil
	}
	*f = ""
	return nil
}

func (f FlexString) String() string { return string(f) }

// ProductRef decodes either a bare product id or a populated product object.
type ProductRef struct {
	ID    string
	Name  string
	Price float64
	Image string
	Store string
}

func (r *ProductRef) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		r.ID = id
		return nil
	}

	var obj struct {
		MongoID     string          `json:"_id"`
		ID          string          `json:"id"`
		ProductName string          `json:"productName"`
		Name        string          `json:"name"`
		Price       float64         `json:"price"`
		Image       string          `json:"image"`
		Images      []string        `json:"images"`
		StoreName   string          `json:"storeName"`
		StoreID     json.RawMessage `json:"storeId"`
		Shop        string          `json:"shop"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil
	}

	r.ID = firstNonEmpty(obj.MongoID, obj.ID)
	r.Name = firstNonEmpty(obj.ProductName, obj.Name)
	r.Price = obj.Price
	r.Image = obj.Image
	if r.Image == "" && len(obj.Images) > 0 {
		r.Image = obj.Images[0]
	}
	r.Store = firstNonEmpty(obj.StoreName, obj.Shop, storeNameFromRef(obj.StoreID))
	return nil
}

func storeNameFromRef(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var obj struct {
		StoreName string `json:"storeName"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return ""
	}
	return obj.StoreName
}

// AddressRef decodes either a plain address string or an address object.
type AddressRef struct {
	Present     bool
	Type        string
	FullAddress string
	Landmark    string
}

func (a *AddressRef) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != "" {
			a.Present = true
			a.FullAddress = s
		}
		return nil
	}

	var obj struct {
		AddressType string `json:"addressType"`
		Type        string `json:"type"`
		FullAddress string `json:"fullAddress"`
		Landmark    string `json:"landmark"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil
	}
	if obj.FullAddress == "" && obj.Type == "" && obj.AddressType == "" {
		return nil
	}
	a.Present = true
	a.Type = firstNonEmpty(obj.AddressType, obj.Type)
	a.FullAddress = obj.FullAddress
	a.Landmark = obj.Landmark
	return nil
}

// CartItem is a cart line as the backend sends it.
type CartItem struct {
	ProductID     string  `json:"productId"`
	ProductName   string  `json:"productName"`
	Price         float64 `json:"price"`
	Image         string  `json:"image"`
	StoreName     string  `json:"storeName"`
	Quantity      int     `json:"quantity"`
	TotalPrice    float64 `json:"totalPrice"`
	BulkThreshold int     `json:"bulkThreshold"`
}

// OrderItem is an order line; productId may be populated or a bare id.
type OrderItem struct {
	ProductID   ProductRef `json:"productId"`
	ProductName string     `json:"productName"`
	Price       float64    `json:"price"`
	Image       string     `json:"image"`
	Quantity    int        `json:"quantity"`
	Status      string     `json:"status"`
	IsBulk      bool       `json:"isBulk"`
}

// VendorOrder groups order items by vendor.
type VendorOrder struct {
	Items []OrderItem `json:"items"`
}

// Refund is a refund entry on an order.
type Refund struct {
	Amount    float64 `json:"amount"`
	Reason    string  `json:"reason"`
	CreatedAt string  `json:"createdAt"`
}

// Order is an order as the backend sends it. Items arrive either flat or
// nested under vendorOrders.
type Order struct {
	MongoID           string        `json:"_id"`
	ID                string        `json:"id"`
	OrderID           string        `json:"orderId"`
	RazorpayOrderID   string        `json:"razorpayOrderId"`
	RazorpayPaymentID string        `json:"razorpayPaymentId"`
	CreatedAt         string        `json:"createdAt"`
	OrderStatus       string        `json:"orderStatus"`
	Status            string        `json:"status"`
	TotalAmount       float64       `json:"totalAmount"`
	Amount            float64       `json:"amount"`
	Subtotal          float64       `json:"subtotal"`
	RegularAmount     float64       `json:"regularAmount"`
	BulkAmount        float64       `json:"bulkAmount"`
	IsBulkOrder       bool          `json:"isBulkOrder"`
	TransportMode     string        `json:"transportMode"`
	DeliveryFee       float64       `json:"deliveryFee"`
	Taxes             float64       `json:"taxes"`
	Items             []OrderItem   `json:"items"`
	VendorOrders      []VendorOrder `json:"vendorOrders"`
	Address           AddressRef    `json:"address"`
	PaymentStatus     string        `json:"paymentStatus"`
	PaymentMethod     string        `json:"paymentMethod"`
	Refunds           []Refund      `json:"refunds"`
}

// Address is a saved delivery address as the backend sends it.
type Address struct {
	MongoID     string     `json:"_id"`
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	AddressType string     `json:"addressType"`
	Type        string     `json:"type"`
	FullAddress string     `json:"fullAddress"`
	City        string     `json:"city"`
	District    string     `json:"district"`
	State       string     `json:"state"`
	Pincode     FlexString `json:"pincode"`
	Landmark    string     `json:"landmark"`
	PhoneNumber FlexString `json:"phoneNumber"`
	Phone       FlexString `json:"phone"`
	IsDefault   bool       `json:"isDefault"`
}

// WishlistItem wraps the populated product reference of a liked product.
type WishlistItem struct {
	ProductID ProductRef `json:"productId"`
	Category  Category   `json:"category"`
}

// Category decodes a category name from a string or an object.
type Category struct {
	Name string
}

func (c *Category) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.Name = s
		return nil
	}
	var obj struct {
		Name         string `json:"name"`
		CategoryName string `json:"categoryName"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil
	}
	c.Name = firstNonEmpty(obj.Name, obj.CategoryName)
	return nil
}

// User is a profile as the backend sends it.
type User struct {
	FullName    string     `json:"fullName"`
	Name        string     `json:"name"`
	PhoneNumber FlexString `json:"phoneNumber"`
	Phone       FlexString `json:"phone"`
	Email       string     `json:"email"`
	Addresses   []Address  `json:"addresses"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
