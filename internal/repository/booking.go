package repository

import (
	"context"

	"placestay/internal/domain"
)

// BookingRepository manages reservations. Bookings are never updated or
// deleted in this layer.
type BookingRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, booking *domain.Booking) (int64, error)
	ListByUser(ctx context.Context, filter OwnerFilter) ([]domain.Booking, error)
}
