package api

import (
	"context"
	"net/http"

	"github.com/inspitereno-lang/entebhoomi/internal/normalize"
)

// Transport modes accepted by order creation.
const (
	TransportDelivery = "Delivery Team"
	TransportCourier  = "Professional Courier"
	TransportByHand   = "By Hand"
)

// Payment methods accepted by order creation.
const (
	PaymentRazorpay      = "RAZORPAY"
	PaymentPurchaseOrder = "PURCHASE_ORDER"
)

// RazorpayHandle is the gateway order handle the backend returns when any
// part of the order needs an online payment.
type RazorpayHandle struct {
	Key      string `json:"key"`
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// CreateOrderResult is the order-creation response: the recorded order plus
// an optional gateway handle. A nil handle means the purchase-order path
// (all bulk, or self-pickup) and no payment is collected.
type CreateOrderResult struct {
	Order    normalize.Order
	Razorpay *RazorpayHandle
}

// CreateOrder creates the order server-side from the server's cart. The
// server reserves stock and decides the payment path before any money moves.
func (c *Client) CreateOrder(ctx context.Context, addressID, transportMode, paymentMethod string) (*CreateOrderResult, error) {
	var out struct {
		envelope
		Order    normalize.Order `json:"order"`
		Razorpay *RazorpayHandle `json:"razorpay"`
	}

	err := c.doJSON(ctx, RequestOpts{
		Method: http.MethodPost,
		Path:   "/order",
		Body: map[string]any{
			"addressId":     addressID,
			"transportMode": transportMode,
			"paymentMethod": paymentMethod,
		},
	}, &out)
	if err != nil {
		return nil, err
	}
	if err := out.ok(); err != nil {
		return nil, err
	}

	if out.Razorpay != nil && out.Razorpay.OrderID == "" {
		out.Razorpay = nil
	}

	return &CreateOrderResult{Order: out.Order, Razorpay: out.Razorpay}, nil
}

// PaymentResponse is the signed callback payload from the gateway checkout.
type PaymentResponse struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

// VerifyPayment submits the gateway's signed response for server-side
// verification. Amounts and order identity are never trusted from the
// client callback alone.
func (c *Client) VerifyPayment(ctx context.Context, payment PaymentResponse) error {
	var out struct{ envelope }

	err := c.doJSON(ctx, RequestOpts{
		Method: http.MethodPost,
		Path:   "/order/verify",
		Body:   payment,
	}, &out)
	if err != nil {
		return err
	}
	return out.ok()
}

// ReportPaymentFailure tells the backend a gateway payment failed or was
// abandoned so it can release reserved stock.
func (c *Client) ReportPaymentFailure(ctx context.Context, razorpayOrderID, reason string) error {
	var out struct{ envelope }

	err := c.doJSON(ctx, RequestOpts{
		Method: http.MethodPost,
		Path:   "/order/payment-failed",
		Body: map[string]any{
			"razorpayOrderId": razorpayOrderID,
			"reason":          reason,
		},
	}, &out)
	if err != nil {
		return err
	}
	return out.ok()
}

// PaymentKey returns the publishable gateway key.
func (c *Client) PaymentKey(ctx context.Context) (string, error) {
	var out struct {
		envelope
		Key string `json:"key"`
	}

	err := c.doJSON(ctx, RequestOpts{
		Method: http.MethodGet,
		Path:   "/order/payment",
	}, &out)
	if err != nil {
		return "", err
	}
	if err := out.ok(); err != nil {
		return "", err
	}
	return out.Key, nil
}

// FetchOrders lists the user's orders, newest first.
func (c *Client) FetchOrders(ctx context.Context) ([]normalize.Order, error) {
	var out struct {
		envelope
		Data []normalize.Order `json:"data"`
	}

	err := c.doJSON(ctx, RequestOpts{
		Method: http.MethodGet,
		Path:   "/order",
	}, &out)
	if err != nil {
		return nil, err
	}
	if err := out.ok(); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// FetchOrderByID returns a single order. The backend answers the filtered
// list endpoint with an array of one.
func (c *Client) FetchOrderByID(ctx context.Context, orderID string) (*normalize.Order, error) {
	var out struct {
		envelope
		Data []normalize.Order `json:"data"`
	}

	err := c.doJSON(ctx, RequestOpts{
		Method: http.MethodGet,
		Path:   "/order",
		Query:  map[string]string{"orderId": orderID},
	}, &out)
	if err != nil {
		return nil, err
	}
	if err := out.ok(); err != nil {
		return nil, err
	}
	if len(out.Data) == 0 {
		return nil, &Error{Status: http.StatusNotFound, Msg: "order not found"}
	}
	return &out.Data[0], nil
}

// CancelOrderItem cancels a single product line of an order.
func (c *Client) CancelOrderItem(ctx context.Context, orderID, productID string) error {
	var out struct{ envelope }

	err := c.doJSON(ctx, RequestOpts{
		Method: http.MethodPut,
		Path:   "/order/" + orderID + "/product/" + productID,
		Body:   map[string]any{"status": "Cancelled"},
	}, &out)
	if err != nil {
		return err
	}
	return out.ok()
}
