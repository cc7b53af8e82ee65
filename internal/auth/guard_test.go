package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"placestay/internal/domain"
	"placestay/internal/repository"
)

type fakeUserRepo struct {
	byEmail  map[string]*domain.User
	failWith error
}

func (f *fakeUserRepo) Init(ctx context.Context) error { return nil }

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) (int64, error) {
	if _, ok := f.byEmail[user.Email]; ok {
		return 0, repository.ErrDuplicateEmail
	}
	user.ID = int64(len(f.byEmail) + 1)
	f.byEmail[user.Email] = user
	return user.ID, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	user, ok := f.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	for _, user := range f.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, repository.ErrNotFound
}

func newTestGuard(t *testing.T, users repository.UserRepository) *Guard {
	t.Helper()
	return NewGuard(users, NewTokenManager("test-secret", time.Hour))
}

func seedUser(t *testing.T, repo *fakeUserRepo, email, password string) *domain.User {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)
	user := &domain.User{Name: "Ann", Email: email, PasswordHash: hash}
	_, err = repo.Create(context.Background(), user)
	require.NoError(t, err)
	return user
}

func TestAuthenticate(t *testing.T) {
	repo := &fakeUserRepo{byEmail: map[string]*domain.User{}}
	user := seedUser(t, repo, "ann@x.com", "secret123")
	guard := newTestGuard(t, repo)

	identity, err := guard.Authenticate(context.Background(), "ann@x.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.ID)
	assert.Equal(t, "ann@x.com", identity.Email)
}

func TestAuthenticateNormalizesEmail(t *testing.T) {
	repo := &fakeUserRepo{byEmail: map[string]*domain.User{}}
	seedUser(t, repo, "ann@x.com", "secret123")
	guard := newTestGuard(t, repo)

	_, err := guard.Authenticate(context.Background(), "  Ann@X.com ", "secret123")
	assert.NoError(t, err)
}

func TestAuthenticateUniformFailure(t *testing.T) {
	repo := &fakeUserRepo{byEmail: map[string]*domain.User{}}
	seedUser(t, repo, "ann@x.com", "secret123")
	guard := newTestGuard(t, repo)

	_, wrongPassword := guard.Authenticate(context.Background(), "ann@x.com", "wrong")
	_, unknownEmail := guard.Authenticate(context.Background(), "bob@x.com", "secret123")

	// unknown account and wrong password are indistinguishable
	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestAuthenticateEmptyInput(t *testing.T) {
	repo := &fakeUserRepo{byEmail: map[string]*domain.User{}}
	guard := newTestGuard(t, repo)

	_, err := guard.Authenticate(context.Background(), "", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = guard.Authenticate(context.Background(), "ann@x.com", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateStorageFaultIsDistinct(t *testing.T) {
	storageErr := errors.New("connection refused")
	repo := &fakeUserRepo{byEmail: map[string]*domain.User{}, failWith: storageErr}
	guard := newTestGuard(t, repo)

	_, err := guard.Authenticate(context.Background(), "ann@x.com", "secret123")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
	assert.ErrorIs(t, err, storageErr)
}

func TestAuthenticateToken(t *testing.T) {
	repo := &fakeUserRepo{byEmail: map[string]*domain.User{}}
	tokens := NewTokenManager("test-secret", time.Hour)
	guard := NewGuard(repo, tokens)

	token, _, err := tokens.Issue(Identity{ID: 7, Email: "ann@x.com"})
	require.NoError(t, err)

	identity, err := guard.AuthenticateToken(token)
	require.NoError(t, err)
	assert.Equal(t, Identity{ID: 7, Email: "ann@x.com"}, identity)
}

func TestAuthenticateTokenFailuresMapToUnauthenticated(t *testing.T) {
	repo := &fakeUserRepo{byEmail: map[string]*domain.User{}}
	expired := NewTokenManager("test-secret", -time.Hour)
	otherSecret := NewTokenManager("other-secret", time.Hour)
	guard := NewGuard(repo, NewTokenManager("test-secret", time.Hour))

	expiredToken, _, err := expired.Issue(Identity{ID: 7, Email: "ann@x.com"})
	require.NoError(t, err)
	foreignToken, _, err := otherSecret.Issue(Identity{ID: 7, Email: "ann@x.com"})
	require.NoError(t, err)

	for _, token := range []string{"", "garbage", expiredToken, foreignToken} {
		_, err := guard.AuthenticateToken(token)
		assert.ErrorIs(t, err, ErrUnauthenticated, "token %q", token)
	}
}

func TestAuthorizeOwner(t *testing.T) {
	guard := newTestGuard(t, &fakeUserRepo{byEmail: map[string]*domain.User{}})

	assert.NoError(t, guard.AuthorizeOwner(Identity{ID: 5}, 5))
	assert.ErrorIs(t, guard.AuthorizeOwner(Identity{ID: 5}, 6), ErrForbidden)
	assert.ErrorIs(t, guard.AuthorizeOwner(Identity{}, 0), ErrForbidden)
	assert.ErrorIs(t, guard.AuthorizeOwner(Identity{}, 5), ErrForbidden)
}

func TestScopeToIdentity(t *testing.T) {
	guard := newTestGuard(t, &fakeUserRepo{byEmail: map[string]*domain.User{}})

	filter := guard.ScopeToIdentity(Identity{ID: 9, Email: "ann@x.com"})
	assert.Equal(t, repository.OwnerFilter{OwnerID: 9}, filter)
}
