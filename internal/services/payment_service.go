// internal/services/payment_service.go
package services

import (
	"math"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
	"github.com/stripe/stripe-go/v74/refund"

	"github.com/bookswap/bookswap-backend/internal/config"
)

// PaymentService is the thin gateway to the card processor. Both workflows go
// through it so provider failures map to a single error class and never leave
// partial local state behind.
type PaymentService struct {
	config *config.Config
}

type PaymentIntentResponse struct {
	IntentID     string `json:"intent_id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
}

func NewPaymentService(config *config.Config) *PaymentService {
	// Initialize Stripe
	stripe.Key = config.Payment.StripeSecretKey

	return &PaymentService{config: config}
}

// CreateIntent opens a payment intent for the given amount in currency units.
func (s *PaymentService) CreateIntent(amount float64, currency, correlationID string, metadata map[string]string) (*PaymentIntentResponse, error) {
	amountInCents := int64(math.Round(amount * 100))

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountInCents),
		Currency: stripe.String(currency),
	}
	params.AddMetadata("correlation_id", correlationID)
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, UpstreamPaymentError("failed to create payment intent", err)
	}

	return &PaymentIntentResponse{
		IntentID:     pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
	}, nil
}

// IntentSucceeded asks the processor whether the intent has settled.
func (s *PaymentService) IntentSucceeded(intentID string) (bool, error) {
	pi, err := paymentintent.Get(intentID, nil)
	if err != nil {
		return false, UpstreamPaymentError("failed to look up payment intent", err)
	}
	return pi.Status == stripe.PaymentIntentStatusSucceeded, nil
}

// RefundIntent refunds amount (or the full charge when amount <= 0) against a
// settled intent.
func (s *PaymentService) RefundIntent(intentID string, amount float64) error {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(intentID),
		Reason:        stripe.String("requested_by_customer"),
	}
	if amount > 0 {
		params.Amount = stripe.Int64(int64(math.Round(amount * 100)))
	}

	if _, err := refund.New(params); err != nil {
		return UpstreamPaymentError("failed to process refund", err)
	}

	return nil
}
