package domain

import "time"

// Place represents a rental listing. OwnerID is set from the authenticated
// identity at creation time and never changes afterwards; it is the sole
// authority for write access to the listing.
type Place struct {
	ID          int64
	OwnerID     int64
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
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
