package repository

import "errors"

var (
	// ErrNotFound is returned when the requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned when a user creation collides with an
	// existing email. The storage layer's uniqueness constraint decides, so
	// concurrent registrations cannot both succeed.
	ErrDuplicateEmail = errors.New("email already registered")
)

// OwnerFilter restricts list queries to entities owned by or attributed to a
// single user.
type OwnerFilter struct {
	OwnerID int64
}
