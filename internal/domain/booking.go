package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Booking struct {
	ID          string
	UserID      string
	ShowID      string
	BookedSeats []string
	Amount      decimal.Decimal
	IsPaid      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type BookingDetails struct {
	Booking Booking
	Show    Show
	Movie   Movie
	User    User
}

type BookingRepository interface {
	GetById(ctx context.Context, id string) (*Booking, error)
	GetDetailsById(ctx context.Context, id string) (*BookingDetails, error)
	MarkPaid(ctx context.Context, id string) error
	DeleteUnpaid(ctx context.Context, id string) error
}
