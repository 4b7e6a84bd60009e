package mocks

import (
	"github.com/metinatakli/movie-ticket-events/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockPaymentWebhookParser struct {
	mock.Mock
	domain.PaymentWebhookParser
}

func (m *MockPaymentWebhookParser) Parse(payload []byte, signature string) (*domain.PaymentEvent, error) {
	args := m.Called(payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentEvent), args.Error(1)
}
