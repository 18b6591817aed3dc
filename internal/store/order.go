package store

import (
	"context"
	"log"

	"github.com/inspitereno-lang/entebhoomi/internal/api"
	"github.com/inspitereno-lang/entebhoomi/internal/checkout"
	"github.com/inspitereno-lang/entebhoomi/internal/models"
	"github.com/inspitereno-lang/entebhoomi/internal/session"
)

// PlaceOrderOptions selects the delivery address and transport for one
// placement. A zero AddressID falls back to the default address.
type PlaceOrderOptions struct {
	AddressID     string
	TransportMode string
	PaymentMethod string
}

// PlaceOrder runs the full order-placement flow against the given payment
// gateway. Only one placement may be in flight at a time.
func (s *Store) PlaceOrder(ctx context.Context, gateway checkout.Gateway, opts PlaceOrderOptions) (*checkout.Result, error) {
	s.mu.Lock()
	if s.placing {
		s.mu.Unlock()
		return nil, ErrPlacementInFlight
	}
	s.placing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.placing = false
		s.mu.Unlock()
	}()

	if opts.AddressID == "" {
		if address, ok := s.DefaultAddress(); ok {
			opts.AddressID = address.ID
		}
	}
	if opts.TransportMode == "" {
		opts.TransportMode = api.TransportDelivery
	}

	var user models.User
	if u, ok := s.User(); ok {
		user = u
	}

	flow := checkout.New(s.client, gateway, s.norm, s.RefreshCart, s.RefreshOrders)
	result, err := flow.Run(ctx, checkout.Request{
		AddressID:     opts.AddressID,
		TransportMode: opts.TransportMode,
		PaymentMethod: opts.PaymentMethod,
		User:          user,
		Cart:          s.Cart(),
	})
	if err != nil {
		s.notify.Error(placementMessage(err))
		return nil, err
	}

	if result.State == checkout.StateSubmitted {
		if opts.TransportMode == api.TransportByHand {
			s.notify.Success("Order placed for self-pickup!")
		} else {
			s.notify.Success("Bulk enquiry submitted! Our team will contact you.")
		}
	} else {
		s.notify.Success("Order placed successfully!")
	}
	return result, nil
}

// CancelOrderItem cancels one product line of an order and re-syncs the
// order list.
func (s *Store) CancelOrderItem(ctx context.Context, orderID, productID string) error {
	if err := s.client.CancelOrderItem(ctx, orderID, productID); err != nil {
		s.notify.Error("Failed to cancel item")
		return err
	}
	if err := s.RefreshOrders(ctx); err != nil {
		log.Printf("[Store] orders sync after cancel failed: %v", err)
	}
	return nil
}

func placementMessage(err error) string {
	switch {
	case err == session.ErrNotAuthenticated:
		return "Please login to place an order"
	case err == checkout.ErrCancelled:
		return "Payment cancelled"
	case err == checkout.ErrAddressRequired:
		return "Please add a delivery address"
	case err == checkout.ErrEmptyCart:
		return "Your cart is empty"
	default:
		return err.Error()
	}
}
