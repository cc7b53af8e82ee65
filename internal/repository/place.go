package repository

import (
	"context"

	"placestay/internal/domain"
)

// PlaceRepository exposes persistence operations for rental listings.
// Update never touches the owner column.
type PlaceRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, place *domain.Place) (int64, error)
	Update(ctx context.Context, place *domain.Place) error
	Get(ctx context.Context, id int64) (*domain.Place, error)
	List(ctx context.Context) ([]domain.Place, error)
	ListByOwner(ctx context.Context, filter OwnerFilter) ([]domain.Place, error)
}
