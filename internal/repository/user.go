package repository

import (
	"context"

	"placestay/internal/domain"
)

// UserRepository defines persistence operations for User entities. There is
// no update or delete; accounts are immutable once created.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}
