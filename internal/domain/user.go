package domain

import (
	"context"
	"time"
)

// User mirrors an identity held by the external auth provider. ID is the
// provider's user id.
type User struct {
	ID        string
	Email     string
	Name      string
	Image     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetById(ctx context.Context, id string) (*User, error)
	GetByIds(ctx context.Context, ids []string) ([]User, error)
	GetAll(ctx context.Context) ([]User, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id string) error
}
