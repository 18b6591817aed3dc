package sandbox

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inspitereno-lang/entebhoomi/internal/config"
	"github.com/inspitereno-lang/entebhoomi/internal/models"
)

const deliveryFee = 40.0

// OrderHandler manages order placement and payment endpoints.
type OrderHandler struct {
	db       *gorm.DB
	cfg      *config.Config
	telegram *TelegramService
}

// NewOrderHandler constructs an OrderHandler.
func NewOrderHandler(db *gorm.DB, cfg *config.Config, telegram *TelegramService) *OrderHandler {
	return &OrderHandler{db: db, cfg: cfg, telegram: telegram}
}

// Sign computes the gateway signature for an order/payment pair. The real
// gateway signs "<order_id>|<payment_id>" with the key secret.
func Sign(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%s|%s", orderID, paymentID)
	return hex.EncodeToString(mac.Sum(nil))
}

func orderItemPayload(item OrderItem) fiber.Map {
	return fiber.Map{
		"productId":   item.ProductID,
		"productName": item.ProductName,
		"price":       item.Price,
		"image":       item.Image,
		"quantity":    item.Quantity,
		"status":      item.Status,
		"isBulk":      item.IsBulk,
	}
}

func orderPayload(o Order) fiber.Map {
	items := make([]fiber.Map, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, orderItemPayload(item))
	}

	return fiber.Map{
		"_id":               o.ID,
		"orderId":           o.OrderCode,
		"razorpayOrderId":   o.RazorpayOrderID,
		"razorpayPaymentId": o.RazorpayPaymentID,
		"createdAt":         o.CreatedAt.Format(time.RFC3339),
		"orderStatus":       o.Status,
		"totalAmount":       o.TotalAmount,
		"subtotal":          o.Subtotal,
		"regularAmount":     o.RegularAmount,
		"bulkAmount":        o.BulkAmount,
		"isBulkOrder":       o.IsBulkOrder,
		"transportMode":     o.TransportMode,
		"deliveryFee":       o.DeliveryFee,
		"taxes":             o.Taxes,
		"items":             items,
		"address":           o.AddressText,
		"paymentStatus":     o.PaymentStatus,
		"paymentMethod":     o.PaymentMethod,
	}
}

type createOrderRequest struct {
	AddressID     string `json:"addressId"`
	TransportMode string `json:"transportMode"`
	PaymentMethod string `json:"paymentMethod"`
}

// CreateOrder places an order from the server-side cart. Lines over their
// product's bulk threshold go to the purchase-order ledger; the rest are
// collected through the payment gateway. The cart is cleared on creation and
// restored by the client if the payment is abandoned.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var cartItems []CartItem
	err := h.db.Preload("Product").Preload("Product.Store").
		Where("user_id = ?", userID).
		Find(&cartItems).Error
	if err != nil {
		return err
	}
	if len(cartItems) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "cart is empty")
	}

	addressText, err := h.resolveAddress(userID, req.AddressID)
	if err != nil {
		return err
	}

	transportMode := req.TransportMode
	if transportMode == "" {
		transportMode = "Delivery Team"
	}

	order := Order{
		UserID:        userID,
		Status:        models.ItemStatusPending,
		PaymentStatus: PaymentStatusPending,
		PaymentMethod: req.PaymentMethod,
		TransportMode: transportMode,
		AddressText:   addressText,
	}
	order.ID = uuid.New()
	order.OrderCode = "ORD-" + strings.ToUpper(order.ID.String()[len(order.ID.String())-6:])

	for _, line := range cartItems {
		if line.Product == nil {
			continue
		}

		threshold := line.Product.BulkThreshold
		if threshold <= 0 {
			threshold = models.DefaultBulkThreshold
		}
		isBulk := line.Quantity > threshold
		lineTotal := line.Product.Price * float64(line.Quantity)

		order.Subtotal += lineTotal
		if isBulk {
			order.BulkAmount += lineTotal
			order.IsBulkOrder = true
		} else {
			order.RegularAmount += lineTotal
		}

		order.Items = append(order.Items, OrderItem{
			OrderID:     order.ID,
			ProductID:   line.ProductID,
			ProductName: line.Product.Name,
			Price:       line.Product.Price,
			Image:       line.Product.Image,
			Quantity:    line.Quantity,
			IsBulk:      isBulk,
			Status:      models.ItemStatusPending,
		})
	}

	// The purchase-order path skips the gateway: nothing to collect online,
	// or the buyer settles on pickup.
	purchaseOrder := req.PaymentMethod == "PURCHASE_ORDER" ||
		transportMode == "By Hand" ||
		order.RegularAmount == 0

	var razorpay fiber.Map
	if purchaseOrder {
		order.TotalAmount = order.Subtotal
	} else {
		if order.RegularAmount > 0 {
			order.DeliveryFee = deliveryFee
		}
		order.TotalAmount = order.Subtotal + order.DeliveryFee

		gatewayOrderID, err := generateGatewayOrderID()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to create gateway order")
		}
		order.RazorpayOrderID = gatewayOrderID

		razorpay = fiber.Map{
			"key":      h.cfg.RazorpayKeyID,
			"orderId":  gatewayOrderID,
			"amount":   int64((order.RegularAmount + order.DeliveryFee) * 100),
			"currency": "INR",
		}
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		return clearCart(tx, userID)
	})
	if err != nil {
		return err
	}

	if purchaseOrder && order.IsBulkOrder {
		go func(o Order, uid uuid.UUID) {
			var user User
			if err := h.db.First(&user, "id = ?", uid).Error; err != nil {
				return
			}
			if err := h.telegram.NotifyPurchaseOrder(o, user.PhoneNumber); err != nil {
				log.Printf("[Order] Telegram notification failed: %v", err)
			}
		}(order, userID)
	}

	response := fiber.Map{
		"success": true,
		"msg":     "order created",
		"order":   orderPayload(order),
	}
	if razorpay != nil {
		response["razorpay"] = razorpay
	}

	return c.Status(fiber.StatusCreated).JSON(response)
}

func (h *OrderHandler) resolveAddress(userID uuid.UUID, addressID string) (string, error) {
	var address Address
	if addressID != "" {
		id, err := uuid.Parse(addressID)
		if err != nil {
			return "", fiber.NewError(fiber.StatusBadRequest, "invalid address id")
		}
		if err := h.db.First(&address, "id = ? AND user_id = ?", id, userID).Error; err != nil {
			return "", fiber.NewError(fiber.StatusBadRequest, "address not found")
		}
	} else {
		err := h.db.Where("user_id = ? AND is_default = ?", userID, true).First(&address).Error
		if err == gorm.ErrRecordNotFound {
			return "", fiber.NewError(fiber.StatusBadRequest, "delivery address is required")
		}
		if err != nil {
			return "", err
		}
	}

	parts := []string{address.FullAddress, address.City, address.District, address.State}
	joined := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			joined = append(joined, p)
		}
	}
	text := strings.Join(joined, ", ")
	if address.Pincode > 0 {
		text = fmt.Sprintf("%s - %d", text, address.Pincode)
	}
	return text, nil
}

// ListOrders lists the user's orders, newest first. An orderId query filters
// to a single order, still returned as a list.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	query := h.db.Preload("Items").Where("user_id = ?", userID).Order("created_at DESC")
	if orderID := c.Query("orderId"); orderID != "" {
		query = query.Where("id = ? OR order_code = ?", orderID, orderID)
	}

	var orders []Order
	if err := query.Find(&orders).Error; err != nil {
		return err
	}

	payload := make([]fiber.Map, 0, len(orders))
	for _, o := range orders {
		payload = append(payload, orderPayload(o))
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    payload,
	})
}

// PaymentKey returns the publishable gateway key.
func (h *OrderHandler) PaymentKey(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"key":     h.cfg.RazorpayKeyID,
	})
}

type verifyPaymentRequest struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

// VerifyPayment checks the gateway signature and marks the order paid.
func (h *OrderHandler) VerifyPayment(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req verifyPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing payment fields")
	}

	expected := Sign(req.OrderID, req.PaymentID, h.cfg.RazorpayKeySecret)
	if !hmac.Equal([]byte(expected), []byte(req.Signature)) {
		return fiber.NewError(fiber.StatusBadRequest, "payment verification failed")
	}

	var order Order
	err := h.db.Where("razorpay_order_id = ? AND user_id = ?", req.OrderID, userID).First(&order).Error
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "order not found")
	}

	updates := map[string]interface{}{
		"payment_status":      PaymentStatusPaid,
		"razorpay_payment_id": req.PaymentID,
	}
	if err := h.db.Model(&order).Updates(updates).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"msg":     "payment verified",
	})
}

type paymentFailedRequest struct {
	RazorpayOrderID string `json:"razorpayOrderId"`
	Reason          string `json:"reason"`
}

// PaymentFailed records a failed or abandoned gateway payment.
func (h *OrderHandler) PaymentFailed(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req paymentFailedRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.RazorpayOrderID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "razorpayOrderId is required")
	}

	var order Order
	err := h.db.Where("razorpay_order_id = ? AND user_id = ?", req.RazorpayOrderID, userID).First(&order).Error
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "order not found")
	}

	updates := map[string]interface{}{
		"payment_status": PaymentStatusFailed,
		"failure_reason": req.Reason,
	}
	if err := h.db.Model(&order).Updates(updates).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"msg":     "payment failure recorded",
	})
}

type updateOrderItemRequest struct {
	Status string `json:"status"`
}

// UpdateOrderItem changes the status of one order line. Buyers may only
// cancel pending lines.
func (h *OrderHandler) UpdateOrderItem(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	orderID := c.Params("orderId")
	productID, err := uuid.Parse(c.Params("productId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
	}

	var req updateOrderItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Status != models.ItemStatusCancelled {
		return fiber.NewError(fiber.StatusBadRequest, "unsupported status")
	}

	var order Order
	err = h.db.Where("(id = ? OR order_code = ?) AND user_id = ?", orderID, orderID, userID).First(&order).Error
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "order not found")
	}

	var item OrderItem
	err = h.db.Where("order_id = ? AND product_id = ?", order.ID, productID).First(&item).Error
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "order item not found")
	}
	if item.Status != models.ItemStatusPending {
		return fiber.NewError(fiber.StatusBadRequest, "item can no longer be cancelled")
	}

	if err := h.db.Model(&item).Update("status", models.ItemStatusCancelled).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"msg":     "item cancelled",
	})
}

func generateGatewayOrderID() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "order_" + hex.EncodeToString(buf), nil
}
