package payments

import (
	"errors"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

var (
	ErrMissingSignature = errors.New("missing Stripe-Signature header")
	ErrSecretMissing    = errors.New("webhook secret is not configured")
)

// EventVerifier turns a signed raw body into a trusted event
type EventVerifier interface {
	Verify(payload []byte, signature string) (stripe.Event, error)
}

type StripeVerifier struct {
	secret string
}

func NewStripeVerifier(secret string) *StripeVerifier {
	return &StripeVerifier{secret: secret}
}

// Verify checks the signature and timestamp tolerance. API version drift
// between the account and this client is accepted.
func (v *StripeVerifier) Verify(payload []byte, signature string) (stripe.Event, error) {
	if v.secret == "" {
		return stripe.Event{}, ErrSecretMissing
	}
	if signature == "" {
		return stripe.Event{}, ErrMissingSignature
	}
	return webhook.ConstructEventWithOptions(payload, signature, v.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
}
