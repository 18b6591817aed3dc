package sandbox

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel provides shared columns for all tables.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate ensures UUIDs are generated for new records.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// User is a marketplace customer, identified by phone number.
type User struct {
	BaseModel
	FullName    string    `json:"full_name"`
	PhoneNumber string    `gorm:"uniqueIndex" json:"phone_number"`
	Email       string    `json:"email"`
	Addresses   []Address `json:"addresses,omitempty"`
}

// OTPVerification keeps track of login codes sent to phone numbers. Codes
// are stored bcrypt-hashed.
type OTPVerification struct {
	BaseModel
	Phone     string    `gorm:"index" json:"phone"`
	CodeHash  string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `json:"used"`
}

// VendorStore is a seller storefront.
type VendorStore struct {
	BaseModel
	StoreName string `json:"store_name"`
	District  string `json:"district"`
	Image     string `json:"image"`
}

// Product is a catalog product. BulkThreshold is the per-product quantity
// above which a line is treated as a bulk purchase order.
type Product struct {
	BaseModel
	StoreID       uuid.UUID    `gorm:"type:uuid;index" json:"store_id"`
	Store         *VendorStore `json:"store,omitempty"`
	Name          string       `json:"name"`
	Category      string       `json:"category"`
	Price         float64      `json:"price"`
	Image         string       `json:"image"`
	BulkThreshold int          `json:"bulk_threshold"`
	Stock         int          `json:"stock"`
}

// CartItem is one active cart line per user and product.
type CartItem struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;index:idx_cart_user_product,unique" json:"user_id"`
	ProductID uuid.UUID `gorm:"type:uuid;index:idx_cart_user_product,unique" json:"product_id"`
	Product   *Product  `json:"product,omitempty"`
	Quantity  int       `json:"quantity"`
}

// WishlistEntry is a liked product.
type WishlistEntry struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;index:idx_wishlist_user_product,unique" json:"user_id"`
	ProductID uuid.UUID `gorm:"type:uuid;index:idx_wishlist_user_product,unique" json:"product_id"`
	Product   *Product  `json:"product,omitempty"`
}

// Address is a saved delivery address. At most one address per user is
// default; writes that set the flag clear it everywhere else.
type Address struct {
	BaseModel
	UserID      uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Name        string    `json:"name"`
	AddressType string    `json:"address_type"`
	FullAddress string    `json:"full_address"`
	City        string    `json:"city"`
	District    string    `json:"district"`
	State       string    `json:"state"`
	Pincode     int       `json:"pincode"`
	Landmark    string    `json:"landmark"`
	PhoneNumber int64     `json:"phone_number"`
	IsDefault   bool      `json:"is_default"`
}

// Order payment statuses.
const (
	PaymentStatusPending = "Pending"
	PaymentStatusPaid    = "Paid"
	PaymentStatusFailed  = "Failed"
)

// Order is a placed order. RegularAmount is collected through the gateway;
// BulkAmount is settled offline as a purchase order.
type Order struct {
	BaseModel
	UserID            uuid.UUID   `gorm:"type:uuid;index" json:"user_id"`
	OrderCode         string      `gorm:"uniqueIndex" json:"order_code"`
	RazorpayOrderID   string      `gorm:"index" json:"razorpay_order_id"`
	RazorpayPaymentID string      `json:"razorpay_payment_id"`
	Status            string      `json:"status"`
	PaymentStatus     string      `json:"payment_status"`
	PaymentMethod     string      `json:"payment_method"`
	TransportMode     string      `json:"transport_mode"`
	AddressText       string      `json:"address_text"`
	Subtotal          float64     `json:"subtotal"`
	RegularAmount     float64     `json:"regular_amount"`
	BulkAmount        float64     `json:"bulk_amount"`
	DeliveryFee       float64     `json:"delivery_fee"`
	Taxes             float64     `json:"taxes"`
	TotalAmount       float64     `json:"total_amount"`
	IsBulkOrder       bool        `json:"is_bulk_order"`
	FailureReason     string      `json:"failure_reason"`
	Items             []OrderItem `json:"items,omitempty"`
}

// OrderItem is one line of an order, with an independently mutable status.
type OrderItem struct {
	BaseModel
	OrderID     uuid.UUID `gorm:"type:uuid;index" json:"order_id"`
	ProductID   uuid.UUID `gorm:"type:uuid" json:"product_id"`
	ProductName string    `json:"product_name"`
	Price       float64   `json:"price"`
	Image       string    `json:"image"`
	Quantity    int       `json:"quantity"`
	IsBulk      bool      `json:"is_bulk"`
	Status      string    `json:"status"`
}

// LandownerEnquiry is a partnership lead from the landowner form.
type LandownerEnquiry struct {
	BaseModel
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	District     string `json:"district"`
	Acreage      string `json:"acreage"`
	Crop         string `json:"crop"`
	Message      string `json:"message"`
	DocumentName string `json:"document_name"`
	DocumentSize int64  `json:"document_size"`
}
