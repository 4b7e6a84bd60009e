package mocks

import (
	"context"
	"time"

	"github.com/metinatakli/movie-ticket-events/internal/domain"
)

type MockShowRepo struct {
	domain.ShowRepository
	GetByIdFunc             func(ctx context.Context, id string) (*domain.Show, error)
	GetStartingBetweenFunc  func(ctx context.Context, from, to time.Time) ([]domain.Show, error)
	UpdateOccupiedSeatsFunc func(ctx context.Context, show *domain.Show) error
}

func (m *MockShowRepo) GetById(ctx context.Context, id string) (*domain.Show, error) {
	return m.GetByIdFunc(ctx, id)
}

func (m *MockShowRepo) GetStartingBetween(ctx context.Context, from, to time.Time) ([]domain.Show, error) {
	return m.GetStartingBetweenFunc(ctx, from, to)
}

func (m *MockShowRepo) UpdateOccupiedSeats(ctx context.Context, show *domain.Show) error {
	return m.UpdateOccupiedSeatsFunc(ctx, show)
}
