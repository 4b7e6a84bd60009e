package mocks

import (
	"context"

	"github.com/metinatakli/movie-ticket-events/internal/domain"
)

type MockUserRepo struct {
	domain.UserRepository
	CreateFunc   func(ctx context.Context, user *domain.User) error
	GetByIdFunc  func(ctx context.Context, id string) (*domain.User, error)
	GetByIdsFunc func(ctx context.Context, ids []string) ([]domain.User, error)
	GetAllFunc   func(ctx context.Context) ([]domain.User, error)
	UpdateFunc   func(ctx context.Context, user *domain.User) error
	DeleteFunc   func(ctx context.Context, id string) error
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	return m.CreateFunc(ctx, user)
}

func (m *MockUserRepo) GetById(ctx context.Context, id string) (*domain.User, error) {
	return m.GetByIdFunc(ctx, id)
}

func (m *MockUserRepo) GetByIds(ctx context.Context, ids []string) ([]domain.User, error) {
	return m.GetByIdsFunc(ctx, ids)
}

func (m *MockUserRepo) GetAll(ctx context.Context) ([]domain.User, error) {
	return m.GetAllFunc(ctx)
}

func (m *MockUserRepo) Update(ctx context.Context, user *domain.User) error {
	return m.UpdateFunc(ctx, user)
}

func (m *MockUserRepo) Delete(ctx context.Context, id string) error {
	return m.DeleteFunc(ctx, id)
}
