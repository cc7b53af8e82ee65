package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenExpired indicates the token was valid but its expiry has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenSignatureInvalid indicates the MAC does not match the payload,
	// either because a different secret signed it or the payload was altered.
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
	// ErrTokenMalformed indicates the token could not be parsed at all.
	ErrTokenMalformed = errors.New("token malformed")
)

// Claims is the identity payload embedded in a session token. Only
// non-sensitive fields are carried; the password hash never enters a token.
type Claims struct {
	UserID int64  `json:"uid"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256-signed session tokens. It holds no
// persistent state; tokens are a pure function of the secret and the claims.
// There is no revocation: logout only discards the client-held token, which
// stays verifiable until its expiry.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager builds a manager around a process-wide secret. The secret
// comes from configuration; an empty secret is rejected at startup, not here.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue signs a token carrying the identity claims plus issued-at and expiry
// timestamps. The returned expiry lets the HTTP layer set a matching cookie
// lifetime.
func (m *TokenManager) Issue(identity Identity) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(m.ttl)

	claims := Claims{
		UserID: identity.ID,
		Email:  identity.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, expiresAt, nil
}

// Verify parses the token, checks the HS256 signature over the full payload
// and the embedded expiry, and returns the claims. Failures are classified as
// ErrTokenExpired, ErrTokenSignatureInvalid or ErrTokenMalformed.
func (m *TokenManager) Verify(tokenString string) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenSignatureInvalid
		default:
			return nil, ErrTokenMalformed
		}
	}
	return &claims, nil
}
