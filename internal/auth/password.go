package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the cost the platform has always hashed with.
const bcryptCost = 12

// ErrEmptyPassword is returned when an empty plaintext is submitted for hashing.
var ErrEmptyPassword = errors.New("password must not be empty")

// HashPassword produces a salted bcrypt digest of the plaintext. The digest
// embeds its own salt and cost, so verification needs nothing beyond the
// digest itself.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext matches the digest. Malformed
// digests compare as a mismatch rather than an error.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
