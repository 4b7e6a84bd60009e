package payment

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/metinatakli/movie-ticket-events/internal/domain"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

const bookingIdMetadataKey = "bookingId"

var ErrInvalidWebhook = errors.New("invalid webhook payload")

type StripeWebhookParser struct {
	webhookSecret string
}

func NewStripeWebhookParser(webhookSecret string) *StripeWebhookParser {
	return &StripeWebhookParser{
		webhookSecret: webhookSecret,
	}
}

// Parse verifies the Stripe-Signature header and maps the event. Only paid
// checkout sessions carrying a booking id count as a successful payment;
// every other event is reported as ignored.
func (s *StripeWebhookParser) Parse(payload []byte, signature string) (*domain.PaymentEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWebhook, err)
	}

	paymentEvent := &domain.PaymentEvent{
		ID:   event.ID,
		Type: domain.PaymentIgnored,
	}

	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		return paymentEvent, nil
	}

	var session stripe.CheckoutSession

	err = json.Unmarshal(event.Data.Raw, &session)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWebhook, err)
	}

	bookingId := session.Metadata[bookingIdMetadataKey]
	if bookingId == "" || session.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return paymentEvent, nil
	}

	paymentEvent.Type = domain.PaymentSucceeded
	paymentEvent.BookingID = bookingId

	return paymentEvent, nil
}
