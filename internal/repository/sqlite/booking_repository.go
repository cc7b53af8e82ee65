package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"placestay/internal/domain"
	"placestay/internal/repository"
)

const createBookingsTable = `
CREATE TABLE IF NOT EXISTS bookings (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	place_id INTEGER NOT NULL REFERENCES places(id),
	user_id INTEGER NOT NULL REFERENCES users(id),
	check_in DATETIME NOT NULL,
	check_out DATETIME NOT NULL,
	number_of_guests INTEGER NOT NULL DEFAULT 1,
	name TEXT NOT NULL,
	phone TEXT NOT NULL DEFAULT '',
	price INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_bookings_user ON bookings(user_id);
`

type BookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) repository.BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createBookingsTable); err != nil {
		return fmt.Errorf("create bookings table: %w", err)
	}
	return nil
}

func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) (int64, error) {
	booking.CreatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
INSERT INTO bookings (place_id, user_id, check_in, check_out, number_of_guests, name, phone, price, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		booking.PlaceID,
		booking.UserID,
		booking.CheckIn,
		booking.CheckOut,
		booking.NumberOfGuests,
		booking.Name,
		booking.Phone,
		booking.Price,
		booking.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert booking: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("booking last insert id: %w", err)
	}
	booking.ID = id
	return id, nil
}

// ListByUser returns the user's bookings newest first, each joined with its
// place so the caller can render the booked listing directly.
func (r *BookingRepository) ListByUser(ctx context.Context, filter repository.OwnerFilter) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT b.id, b.place_id, b.user_id, b.check_in, b.check_out, b.number_of_guests, b.name, b.phone, b.price, b.created_at,
       p.id, p.owner_id, p.title, p.address, p.photos, p.description, p.perks, p.extra_info, p.check_in, p.check_out, p.max_guests, p.price, p.created_at, p.updated_at
FROM bookings b
JOIN places p ON p.id = b.place_id
WHERE b.user_id = ?
ORDER BY b.created_at DESC`,
		filter.OwnerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		var (
			booking domain.Booking
			place   domain.Place
			photos  string
			perks   string
		)
		if err := rows.Scan(
			&booking.ID,
			&booking.PlaceID,
			&booking.UserID,
			&booking.CheckIn,
			&booking.CheckOut,
			&booking.NumberOfGuests,
			&booking.Name,
			&booking.Phone,
			&booking.Price,
			&booking.CreatedAt,
			&place.ID,
			&place.OwnerID,
			&place.Title,
			&place.Address,
			&photos,
			&place.Description,
			&perks,
			&place.ExtraInfo,
			&place.CheckIn,
			&place.CheckOut,
			&place.MaxGuests,
			&place.Price,
			&place.CreatedAt,
			&place.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		if err := json.Unmarshal([]byte(photos), &place.Photos); err != nil {
			return nil, fmt.Errorf("decode photos: %w", err)
		}
		if err := json.Unmarshal([]byte(perks), &place.Perks); err != nil {
			return nil, fmt.Errorf("decode perks: %w", err)
		}
		booking.Place = &place
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}
	return bookings, nil
}
