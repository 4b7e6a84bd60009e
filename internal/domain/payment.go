package domain

type PaymentEventType string

const (
	PaymentSucceeded PaymentEventType = "succeeded"
	PaymentIgnored   PaymentEventType = "ignored"
)

// PaymentEvent is the provider independent view of a payment webhook.
type PaymentEvent struct {
	ID        string
	Type      PaymentEventType
	BookingID string
}

type PaymentWebhookParser interface {
	Parse(payload []byte, signature string) (*PaymentEvent, error)
}
