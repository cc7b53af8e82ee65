package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"placestay/internal/repository"
)

var (
	// ErrInvalidCredentials indicates a login failed. Unknown email and wrong
	// password are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated indicates a missing, invalid or expired session token.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden indicates an authenticated identity that does not own the
	// targeted resource.
	ErrForbidden = errors.New("forbidden")
)

// Identity is the authenticated principal derived from verified credentials
// or token claims.
type Identity struct {
	ID    int64
	Email string
}

// Guard makes the authentication and ownership decisions for the platform.
// It owns no state beyond its collaborators: credential lookups go to the
// user repository, token verification to the TokenManager.
type Guard struct {
	users  repository.UserRepository
	tokens *TokenManager

	// decoyHash is compared against when the email is unknown, so that both
	// failure paths pay the same bcrypt cost.
	decoyHash string
}

func NewGuard(users repository.UserRepository, tokens *TokenManager) *Guard {
	decoy, err := HashPassword(uuid.NewString())
	if err != nil {
		decoy = ""
	}
	return &Guard{
		users:     users,
		tokens:    tokens,
		decoyHash: decoy,
	}
}

// Authenticate verifies an email/password pair and returns the identity. Any
// credential mismatch, including an unknown email, yields
// ErrInvalidCredentials. Storage faults are returned as-is so the caller can
// tell "retry later" from "bad credentials".
func (g *Guard) Authenticate(ctx context.Context, email, password string) (Identity, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return Identity{}, ErrInvalidCredentials
	}

	user, err := g.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			CheckPassword(g.decoyHash, password)
			return Identity{}, ErrInvalidCredentials
		}
		return Identity{}, fmt.Errorf("look up user: %w", err)
	}

	if !CheckPassword(user.PasswordHash, password) {
		return Identity{}, ErrInvalidCredentials
	}

	return Identity{ID: user.ID, Email: user.Email}, nil
}

// AuthenticateToken verifies a session token and returns the identity carried
// in its claims. Every token failure maps to ErrUnauthenticated; the caller
// never learns whether the token was expired, tampered with or garbage.
func (g *Guard) AuthenticateToken(token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrUnauthenticated
	}
	claims, err := g.tokens.Verify(token)
	if err != nil {
		return Identity{}, ErrUnauthenticated
	}
	return Identity{ID: claims.UserID, Email: claims.Email}, nil
}

// AuthorizeOwner permits the operation iff the identity is the resource's
// owner. Callers load the resource first, decide, then write; the owner
// reference itself is never part of the mutation.
func (g *Guard) AuthorizeOwner(identity Identity, ownerID int64) error {
	if identity.ID == 0 || identity.ID != ownerID {
		return ErrForbidden
	}
	return nil
}

// ScopeToIdentity derives the query filter restricting list results to
// resources owned by or attributed to the identity.
func (g *Guard) ScopeToIdentity(identity Identity) repository.OwnerFilter {
	return repository.OwnerFilter{OwnerID: identity.ID}
}
