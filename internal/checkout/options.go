package checkout

import (
	"context"

	"github.com/inspitereno-lang/entebhoomi/internal/api"
	"github.com/inspitereno-lang/entebhoomi/internal/models"
)

// Prefill carries the contact details shown in the gateway checkout. Only
// values that pass minimal format validation are included.
type Prefill struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Contact string `json:"contact,omitempty"`
}

// Options is the gateway checkout configuration. Amount is in minor
// currency units and, like the order identity, is re-verified server-side;
// the modal is an external trust boundary.
type Options struct {
	Key         string  `json:"key"`
	Amount      int64   `json:"amount"`
	Currency    string  `json:"currency"`
	OrderID     string  `json:"order_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Prefill     Prefill `json:"prefill"`
	ThemeColor  string  `json:"theme_color"`
}

// Callbacks are the three independent paths the gateway modal can fire.
// The flow's state machine guarantees only one terminal outcome regardless
// of ordering or duplication.
type Callbacks struct {
	OnSuccess func(api.PaymentResponse)
	OnFailure func(reason string)
	OnDismiss func()
}

// Gateway presents a payment checkout. Open blocks until the interaction
// has completed and all callbacks have returned.
type Gateway interface {
	Open(ctx context.Context, opts Options, cb Callbacks) error
}

// buildOptions assembles the checkout configuration from the gateway handle
// and the logged-in user.
func buildOptions(handle api.RazorpayHandle, user models.User) Options {
	currency := handle.Currency
	if currency == "" {
		currency = "INR"
	}

	opts := Options{
		Key:         handle.Key,
		Amount:      handle.Amount,
		Currency:    currency,
		OrderID:     handle.OrderID,
		Name:        "EnteBhoomi",
		Description: "Farm Produce Order Payment",
		ThemeColor:  "#5bab00",
	}

	if user.Name != "" {
		opts.Prefill.Name = user.Name
	}
	if user.Email != "" {
		opts.Prefill.Email = user.Email
	}
	if digits := api.DigitsOnly(user.Phone); len(digits) >= 10 {
		opts.Prefill.Contact = digits
	}

	return opts
}
