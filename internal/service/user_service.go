package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"placestay/internal/auth"
	"placestay/internal/domain"
	"placestay/internal/repository"
)

// UserService handles account registration and login.
type UserService interface {
	Register(ctx context.Context, name, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type userService struct {
	users  repository.UserRepository
	guard  *auth.Guard
	tokens *auth.TokenManager
}

func NewUserService(users repository.UserRepository, guard *auth.Guard, tokens *auth.TokenManager) UserService {
	return &userService{
		users:  users,
		guard:  guard,
		tokens: tokens,
	}
}

func (s *userService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))

	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}

	// the unique email index arbitrates concurrent registrations
	if _, err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return sanitizeUser(user), nil
}

func (s *userService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	identity, err := s.guard.Authenticate(ctx, email, password)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	token, expiresAt, err := s.tokens.Issue(identity)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	user, err := s.users.GetByID(ctx, identity.ID)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	return sanitizeUser(user), token, expiresAt, nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
