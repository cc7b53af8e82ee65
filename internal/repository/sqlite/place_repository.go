package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"placestay/internal/domain"
	"placestay/internal/repository"
)

const createPlacesTable = `
CREATE TABLE IF NOT EXISTS places (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	owner_id INTEGER NOT NULL REFERENCES users(id),
	title TEXT NOT NULL,
	address TEXT NOT NULL DEFAULT '',
	photos TEXT NOT NULL DEFAULT '[]',
	description TEXT NOT NULL DEFAULT '',
	perks TEXT NOT NULL DEFAULT '[]',
	extra_info TEXT NOT NULL DEFAULT '',
	check_in TEXT NOT NULL DEFAULT '',
	check_out TEXT NOT NULL DEFAULT '',
	max_guests INTEGER NOT NULL DEFAULT 1,
	price INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_places_owner ON places(owner_id);
`

type PlaceRepository struct {
	db *sql.DB
}

func NewPlaceRepository(db *sql.DB) repository.PlaceRepository {
	return &PlaceRepository{db: db}
}

func (r *PlaceRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createPlacesTable); err != nil {
		return fmt.Errorf("create places table: %w", err)
	}
	return nil
}

func (r *PlaceRepository) Create(ctx context.Context, place *domain.Place) (int64, error) {
	now := time.Now().UTC()
	place.CreatedAt = now
	place.UpdatedAt = now

	photos, perks, err := encodeLists(place)
	if err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx, `
INSERT INTO places (owner_id, title, address, photos, description, perks, extra_info, check_in, check_out, max_guests, price, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		place.OwnerID,
		place.Title,
		place.Address,
		photos,
		place.Description,
		perks,
		place.ExtraInfo,
		place.CheckIn,
		place.CheckOut,
		place.MaxGuests,
		place.Price,
		place.CreatedAt,
		place.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert place: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("place last insert id: %w", err)
	}
	place.ID = id
	return id, nil
}

// Update rewrites the listing's descriptive fields. The owner column is
// deliberately absent from the statement; ownership never changes.
func (r *PlaceRepository) Update(ctx context.Context, place *domain.Place) error {
	place.UpdatedAt = time.Now().UTC()

	photos, perks, err := encodeLists(place)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
UPDATE places
SET title = ?, address = ?, photos = ?, description = ?, perks = ?, extra_info = ?, check_in = ?, check_out = ?, max_guests = ?, price = ?, updated_at = ?
WHERE id = ?`,
		place.Title,
		place.Address,
		photos,
		place.Description,
		perks,
		place.ExtraInfo,
		place.CheckIn,
		place.CheckOut,
		place.MaxGuests,
		place.Price,
		place.UpdatedAt,
		place.ID,
	)
	if err != nil {
		return fmt.Errorf("update place: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update place rows affected: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PlaceRepository) Get(ctx context.Context, id int64) (*domain.Place, error) {
	row := r.db.QueryRowContext(ctx, selectPlace+` WHERE id = ?`, id)
	return scanPlace(row)
}

func (r *PlaceRepository) List(ctx context.Context) ([]domain.Place, error) {
	rows, err := r.db.QueryContext(ctx, selectPlace+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list places: %w", err)
	}
	defer rows.Close()
	return collectPlaces(rows)
}

func (r *PlaceRepository) ListByOwner(ctx context.Context, filter repository.OwnerFilter) ([]domain.Place, error) {
	rows, err := r.db.QueryContext(ctx, selectPlace+` WHERE owner_id = ? ORDER BY created_at DESC`, filter.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("list places by owner: %w", err)
	}
	defer rows.Close()
	return collectPlaces(rows)
}

const selectPlace = `
SELECT id, owner_id, title, address, photos, description, perks, extra_info, check_in, check_out, max_guests, price, created_at, updated_at
FROM places`

func encodeLists(place *domain.Place) (photos, perks string, err error) {
	photosBytes, err := json.Marshal(emptyIfNil(place.Photos))
	if err != nil {
		return "", "", fmt.Errorf("encode photos: %w", err)
	}
	perksBytes, err := json.Marshal(emptyIfNil(place.Perks))
	if err != nil {
		return "", "", fmt.Errorf("encode perks: %w", err)
	}
	return string(photosBytes), string(perksBytes), nil
}

func emptyIfNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

func scanPlace(row interface {
	Scan(dest ...any) error
}) (*domain.Place, error) {
	var (
		place  domain.Place
		photos string
		perks  string
	)
	if err := row.Scan(
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
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan place: %w", err)
	}
	if err := json.Unmarshal([]byte(photos), &place.Photos); err != nil {
		return nil, fmt.Errorf("decode photos: %w", err)
	}
	if err := json.Unmarshal([]byte(perks), &place.Perks); err != nil {
		return nil, fmt.Errorf("decode perks: %w", err)
	}
	return &place, nil
}

func collectPlaces(rows *sql.Rows) ([]domain.Place, error) {
	var places []domain.Place
	for rows.Next() {
		place, err := scanPlace(rows)
		if err != nil {
			return nil, err
		}
		places = append(places, *place)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate places: %w", err)
	}
	return places, nil
}
