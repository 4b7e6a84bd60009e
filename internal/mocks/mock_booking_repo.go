package mocks

import (
	"context"

	"github.com/metinatakli/movie-ticket-events/internal/domain"
)

type MockBookingRepo struct {
	domain.BookingRepository
	GetByIdFunc        func(ctx context.Context, id string) (*domain.Booking, error)
	GetDetailsByIdFunc func(ctx context.Context, id string) (*domain.BookingDetails, error)
	MarkPaidFunc       func(ctx context.Context, id string) error
	DeleteUnpaidFunc   func(ctx context.Context, id string) error
}

func (m *MockBookingRepo) GetById(ctx context.Context, id string) (*domain.Booking, error) {
	return m.GetByIdFunc(ctx, id)
}

func (m *MockBookingRepo) GetDetailsById(ctx context.Context, id string) (*domain.BookingDetails, error) {
	return m.GetDetailsByIdFunc(ctx, id)
}

func (m *MockBookingRepo) MarkPaid(ctx context.Context, id string) error {
	return m.MarkPaidFunc(ctx, id)
}

func (m *MockBookingRepo) DeleteUnpaid(ctx context.Context, id string) error {
	return m.DeleteUnpaidFunc(ctx, id)
}
