package service

import (
	"context"
	"fmt"
	"strings"

	"placestay/internal/auth"
	"placestay/internal/domain"
	"placestay/internal/repository"
)

// PlaceInput carries the mutable fields of a listing. The owner is never part
// of the input; it comes from the authenticated identity at creation and is
// immutable afterwards.
type PlaceInput struct {
	Title       string
	Address     string
	Photos      []string
	Description string
	Perks       []string
	ExtraInfo   string
	CheckIn     string
	CheckOut    string
	MaxGuests   int
	Price       int64
}

// PlaceService coordinates listing operations and enforces ownership on
// mutation.
type PlaceService interface {
	Create(ctx context.Context, identity auth.Identity, input PlaceInput) (*domain.Place, error)
	Update(ctx context.Context, identity auth.Identity, id int64, input PlaceInput) (*domain.Place, error)
	Get(ctx context.Context, id int64) (*domain.Place, error)
	List(ctx context.Context) ([]domain.Place, error)
	ListByOwner(ctx context.Context, identity auth.Identity) ([]domain.Place, error)
}

type placeService struct {
	places repository.PlaceRepository
	guard  *auth.Guard
}

func NewPlaceService(places repository.PlaceRepository, guard *auth.Guard) PlaceService {
	return &placeService{
		places: places,
		guard:  guard,
	}
}

func (s *placeService) Create(ctx context.Context, identity auth.Identity, input PlaceInput) (*domain.Place, error) {
	if identity.ID == 0 {
		return nil, auth.ErrUnauthenticated
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	place := &domain.Place{OwnerID: identity.ID}
	applyPlaceInput(place, input)

	if _, err := s.places.Create(ctx, place); err != nil {
		return nil, err
	}
	return place, nil
}

// Update loads the listing, checks ownership against its stored owner, and
// only then writes. The write never touches the owner column.
func (s *placeService) Update(ctx context.Context, identity auth.Identity, id int64, input PlaceInput) (*domain.Place, error) {
	place, err := s.places.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.guard.AuthorizeOwner(identity, place.OwnerID); err != nil {
		return nil, err
	}

	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	applyPlaceInput(place, input)
	if err := s.places.Update(ctx, place); err != nil {
		return nil, err
	}
	return place, nil
}

func (s *placeService) Get(ctx context.Context, id int64) (*domain.Place, error) {
	return s.places.Get(ctx, id)
}

func (s *placeService) List(ctx context.Context) ([]domain.Place, error) {
	return s.places.List(ctx)
}

func (s *placeService) ListByOwner(ctx context.Context, identity auth.Identity) ([]domain.Place, error) {
	if identity.ID == 0 {
		return nil, auth.ErrUnauthenticated
	}
	return s.places.ListByOwner(ctx, s.guard.ScopeToIdentity(identity))
}

func applyPlaceInput(place *domain.Place, input PlaceInput) {
	place.Title = strings.TrimSpace(input.Title)
	place.Address = strings.TrimSpace(input.Address)
	place.Photos = input.Photos
	place.Description = input.Description
	place.Perks = input.Perks
	place.ExtraInfo = input.ExtraInfo
	place.CheckIn = input.CheckIn
	place.CheckOut = input.CheckOut
	place.MaxGuests = input.MaxGuests
	place.Price = input.Price
}
