package domain

import "time"

// Booking records a reservation of a place. UserID is set from the
// authenticated identity at creation time and never changes afterwards.
type Booking struct {
	ID             int64
	PlaceID        int64
	UserID         int64
	CheckIn        time.Time
	CheckOut       time.Time
	NumberOfGuests int
	Name           string
	Phone          string
	Price          int64
	CreatedAt      time.Time

	// Place is populated on list queries so callers can render the
	// booked listing without a second lookup.
	Place *Place
}
