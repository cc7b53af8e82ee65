package service

import (
	"context"
	"fmt"
	"time"

	"placestay/internal/auth"
	"placestay/internal/domain"
	"placestay/internal/repository"
)

// BookingInput carries the fields a guest submits when reserving a place.
// The booking user is taken from the authenticated identity, never from the
// payload.
type BookingInput struct {
	PlaceID        int64
	CheckIn        time.Time
	CheckOut       time.Time
	NumberOfGuests int
	Name           string
	Phone          string
	Price          int64
}

// BookingService creates reservations attributed to the authenticated
// identity and lists them scoped to it.
type BookingService interface {
	Create(ctx context.Context, identity auth.Identity, input BookingInput) (*domain.Booking, error)
	ListForUser(ctx context.Context, identity auth.Identity) ([]domain.Booking, error)
}

type bookingService struct {
	bookings repository.BookingRepository
	places   repository.PlaceRepository
	guard    *auth.Guard
}

func NewBookingService(bookings repository.BookingRepository, places repository.PlaceRepository, guard *auth.Guard) BookingService {
	return &bookingService{
		bookings: bookings,
		places:   places,
		guard:    guard,
	}
}

func (s *bookingService) Create(ctx context.Context, identity auth.Identity, input BookingInput) (*domain.Booking, error) {
	if identity.ID == 0 {
		return nil, auth.ErrUnauthenticated
	}
	if input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if input.CheckIn.IsZero() || input.CheckOut.IsZero() || !input.CheckOut.After(input.CheckIn) {
		return nil, fmt.Errorf("%w: check-out must follow check-in", ErrInvalidInput)
	}

	place, err := s.places.Get(ctx, input.PlaceID)
	if err != nil {
		return nil, err
	}

	booking := &domain.Booking{
		PlaceID:        place.ID,
		UserID:         identity.ID,
		CheckIn:        input.CheckIn,
		CheckOut:       input.CheckOut,
		NumberOfGuests: input.NumberOfGuests,
		Name:           input.Name,
		Phone:          input.Phone,
		Price:          input.Price,
	}

	if _, err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}
	booking.Place = place
	return booking, nil
}

func (s *bookingService) ListForUser(ctx context.Context, identity auth.Identity) ([]domain.Booking, error) {
	if identity.ID == 0 {
		return nil, auth.ErrUnauthenticated
	}
	return s.bookings.ListByUser(ctx, s.guard.ScopeToIdentity(identity))
}
