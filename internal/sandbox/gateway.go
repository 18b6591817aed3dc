package sandbox

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/inspitereno-lang/entebhoomi/internal/api"
	"github.com/inspitereno-lang/entebhoomi/internal/checkout"
)

// GatewayAction scripts how the simulated checkout modal behaves.
type GatewayAction int

const (
	// GatewayPay completes the payment with a valid signature.
	GatewayPay GatewayAction = iota
	// GatewayDismiss closes the modal without a payment attempt.
	GatewayDismiss
	// GatewayFailThenDismiss fails a payment attempt, then closes the modal.
	// Real modals stay open after a failed attempt; dismissal follows.
	GatewayFailThenDismiss
)

// Gateway simulates the hosted payment checkout against the sandbox. It
// signs payments with the same secret the verify endpoint checks.
type Gateway struct {
	Secret string
	Action GatewayAction

	// FailureReason overrides the reported reason for failed attempts.
	FailureReason string
	// Tamper corrupts the signature so verification is rejected.
	Tamper bool
}

// Open runs the scripted interaction and fires the matching callbacks.
func (g *Gateway) Open(ctx context.Context, opts checkout.Options, cb checkout.Callbacks) error {
	switch g.Action {
	case GatewayDismiss:
		cb.OnDismiss()
	case GatewayFailThenDismiss:
		reason := g.FailureReason
		if reason == "" {
			reason = "Payment declined by bank"
		}
		cb.OnFailure(reason)
		cb.OnDismiss()
	default:
		paymentID, err := generatePaymentID()
		if err != nil {
			return err
		}

		signature := Sign(opts.OrderID, paymentID, g.Secret)
		if g.Tamper {
			signature = Sign(opts.OrderID, paymentID, g.Secret+"x")
		}

		cb.OnSuccess(api.PaymentResponse{
			OrderID:   opts.OrderID,
			PaymentID: paymentID,
			Signature: signature,
		})
	}
	return nil
}

func generatePaymentID() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "pay_" + hex.EncodeToString(buf), nil
}
