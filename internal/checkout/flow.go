// Package checkout drives order placement: bulk/regular bifurcation,
// create-before-pay ordering, the gateway checkout, and settlement of the
// three callback paths through a single state machine.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/inspitereno-lang/entebhoomi/internal/api"
	"github.com/inspitereno-lang/entebhoomi/internal/models"
	"github.com/inspitereno-lang/entebhoomi/internal/normalize"
	"github.com/inspitereno-lang/entebhoomi/internal/session"
)

var (
	// ErrAddressRequired aborts placement before any network call when no
	// delivery address was chosen.
	ErrAddressRequired = errors.New("checkout: delivery address required")
	// ErrEmptyCart aborts placement before create-order when the cart has
	// no items.
	ErrEmptyCart = errors.New("checkout: cart is empty")
	// ErrCancelled reports a checkout dismissed by the user without a
	// payment attempt. The server order stays recorded as unpaid.
	ErrCancelled = errors.New("checkout: payment cancelled")
)

// VerificationError reports a payment the server refused to verify. The
// order remains unpaid server-side; the local cart is left untouched.
type VerificationError struct {
	Msg string
}

func (e *VerificationError) Error() string {
	if e.Msg == "" {
		return "checkout: payment verification failed"
	}
	return "checkout: payment verification failed: " + e.Msg
}

// PaymentError reports an explicit failure event from the gateway.
type PaymentError struct {
	Reason string
}

func (e *PaymentError) Error() string {
	return "checkout: payment failed: " + e.Reason
}

// Request is one order placement.
type Request struct {
	AddressID     string
	TransportMode string
	PaymentMethod string
	User          models.User
	Cart          models.Cart
}

// Result is a settled placement.
type Result struct {
	OrderID     string
	DisplayCode string
	State       State
	IsBulk      bool
	Total       float64
	// OrderedCart is the confirmed order mapped back to cart shape, built
	// from the server's authoritative line items.
	OrderedCart models.Cart
}

// Flow executes order placements. One Flow runs one placement at a time;
// callers gate re-invocation while a placement is pending.
type Flow struct {
	client        *api.Client
	gateway       Gateway
	norm          *normalize.Normalizer
	refreshCart   func(context.Context) error
	refreshOrders func(context.Context) error
}

// New constructs a Flow. The refresh callbacks re-sync the caller's local
// state from backend truth after settlement.
func New(client *api.Client, gateway Gateway, norm *normalize.Normalizer, refreshCart, refreshOrders func(context.Context) error) *Flow {
	if refreshCart == nil {
		refreshCart = func(context.Context) error { return nil }
	}
	if refreshOrders == nil {
		refreshOrders = func(context.Context) error { return nil }
	}
	return &Flow{
		client:        client,
		gateway:       gateway,
		norm:          norm,
		refreshCart:   refreshCart,
		refreshOrders: refreshOrders,
	}
}

// Run places an order. Unexpected errors trigger a cart refresh before
// returning, so partial server-side effects are reconciled; payment
// cancellation and verification failures reconcile inside their handlers.
func (f *Flow) Run(ctx context.Context, req Request) (*Result, error) {
	result, err := f.run(ctx, req)
	if err != nil && !reconciled(err) {
		if refreshErr := f.refreshCart(ctx); refreshErr != nil {
			log.Printf("[Checkout] cart refresh after error failed: %v", refreshErr)
		}
		return nil, err
	}
	return result, err
}

func reconciled(err error) bool {
	var verification *VerificationError
	var payment *PaymentError
	return errors.Is(err, ErrCancelled) ||
		errors.As(err, &verification) ||
		errors.As(err, &payment) ||
		errors.Is(err, ErrAddressRequired) ||
		errors.Is(err, ErrEmptyCart) ||
		errors.Is(err, session.ErrNotAuthenticated)
}

func (f *Flow) run(ctx context.Context, req Request) (*Result, error) {
	if !f.client.Session().IsRegistered() {
		return nil, session.ErrNotAuthenticated
	}
	if req.AddressID == "" {
		return nil, ErrAddressRequired
	}
	if len(req.Cart) == 0 {
		return nil, ErrEmptyCart
	}

	m := &machine{state: StateIdle}

	created, err := f.client.CreateOrder(ctx, req.AddressID, req.TransportMode, req.PaymentMethod)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	m.transition(StateOrderCreated)

	order := f.norm.Order(created.Order)

	// No gateway handle: every item was bulk, or self-pickup was chosen.
	// The order is recorded as a purchase order and no payment is taken.
	if created.Razorpay == nil {
		m.transition(StateSubmitted)
		log.Printf("[Checkout] purchase order %s recorded, no payment required", order.OrderID)

		if err := f.refreshCart(ctx); err != nil {
			log.Printf("[Checkout] cart refresh failed: %v", err)
		}
		if err := f.refreshOrders(ctx); err != nil {
			log.Printf("[Checkout] orders refresh failed: %v", err)
		}

		return &Result{
			OrderID:     order.ID,
			DisplayCode: order.OrderID,
			State:       StateSubmitted,
			IsBulk:      order.BulkAmount > 0,
			Total:       order.Total,
		}, nil
	}

	m.transition(StateAwaitingPayment)
	handle := *created.Razorpay
	opts := buildOptions(handle, req.User)
	log.Printf("[Checkout] order %s created, opening checkout for %d %s", order.OrderID, handle.Amount, opts.Currency)

	var (
		result  *Result
		flowErr error
	)

	cb := Callbacks{
		OnSuccess: func(payment api.PaymentResponse) {
			if !m.transition(StateVerifying) {
				return
			}

			if err := f.client.VerifyPayment(ctx, payment); err != nil {
				m.transition(StateFailed)
				flowErr = &VerificationError{Msg: apiMessage(err)}
				log.Printf("[Checkout] payment verification failed for %s: %v", handle.OrderID, err)
				return
			}

			orderedCart := f.confirmedCart(ctx, order.ID)

			if err := f.refreshCart(ctx); err != nil {
				log.Printf("[Checkout] cart refresh failed: %v", err)
			}
			if err := f.refreshOrders(ctx); err != nil {
				log.Printf("[Checkout] orders refresh failed: %v", err)
			}

			m.transition(StateSucceeded)
			result = &Result{
				OrderID:     order.ID,
				DisplayCode: order.OrderID,
				State:       StateSucceeded,
				IsBulk:      order.IsBulkOrder,
				Total:       order.Total,
				OrderedCart: orderedCart,
			}
			log.Printf("[Checkout] order %s paid and verified", order.OrderID)
		},

		OnFailure: func(reason string) {
			if reason == "" {
				reason = "Payment failed"
			}
			m.markFailure(reason)
			if err := f.client.ReportPaymentFailure(ctx, handle.OrderID, reason); err != nil {
				log.Printf("[Checkout] failure report for %s failed: %v", handle.OrderID, err)
			}
		},

		OnDismiss: func() {
			reason, failed := m.failure()

			target := StateCancelled
			if failed {
				target = StateFailed
			}
			if !m.transition(target) {
				return
			}

			if !failed {
				reason = "Payment cancelled"
				if err := f.client.ReportPaymentFailure(ctx, handle.OrderID, reason); err != nil {
					log.Printf("[Checkout] cancellation report for %s failed: %v", handle.OrderID, err)
				}
			}

			// Rebuild the cart from the server's own order items, not the
			// pre-checkout client snapshot: quantities may have been
			// adjusted during order creation.
			f.restoreCartFromOrder(ctx, order.Items)

			if failed {
				flowErr = &PaymentError{Reason: reason}
			} else {
				flowErr = ErrCancelled
			}
		},
	}

	if err := f.gateway.Open(ctx, opts, cb); err != nil {
		return nil, fmt.Errorf("open checkout: %w", err)
	}

	// A gateway that returns without firing any terminal callback is
	// treated as a dismissal.
	if !m.current().Terminal() {
		cb.OnDismiss()
	}

	if flowErr != nil {
		return nil, flowErr
	}
	if result == nil {
		return nil, ErrCancelled
	}
	return result, nil
}

// confirmedCart fetches the confirmed order and maps its authoritative line
// items back into cart shape for the success screen.
func (f *Flow) confirmedCart(ctx context.Context, orderID string) models.Cart {
	confirmed, err := f.client.FetchOrderByID(ctx, orderID)
	if err != nil {
		log.Printf("[Checkout] failed to fetch confirmed order %s: %v", orderID, err)
		return models.Cart{}
	}

	order := f.norm.Order(*confirmed)
	cart := make(models.Cart, 0, len(order.Items))
	for _, item := range order.Items {
		cart = append(cart, models.CartItem{
			Product:    item.Product,
			Quantity:   item.Quantity,
			TotalPrice: item.Product.Price * float64(item.Quantity),
		})
	}
	return cart
}

// restoreCartFromOrder re-adds every item of the abandoned order to the
// cart: one bulk add, then quantity updates for multi-unit lines.
func (f *Flow) restoreCartFromOrder(ctx context.Context, items []models.OrderItem) {
	if len(items) == 0 {
		return
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	if err := f.client.AddToCart(ctx, ids...); err != nil {
		log.Printf("[Checkout] cart restore add failed: %v", err)
		return
	}

	for _, item := range items {
		if item.Quantity > 1 {
			if err := f.client.UpdateCartQuantity(ctx, item.ProductID, item.Quantity); err != nil {
				log.Printf("[Checkout] cart restore quantity for %s failed: %v", item.ProductID, err)
			}
		}
	}

	if err := f.refreshCart(ctx); err != nil {
		log.Printf("[Checkout] cart refresh after restore failed: %v", err)
	}
}

func apiMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Msg
	}
	return err.Error()
}
