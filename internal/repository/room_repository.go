package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/opentable/private-dining/internal/model"
)

// RoomRepo reads private dining rooms. Rooms are catalog data owned by an
// external management surface; the reservation core only ever reads them,
// so no mutating methods exist here.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo returns a new RoomRepo bound to the given database.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

const roomColumns = `id, restaurant_id, name, min_capacity, max_capacity,
	minimum_spend_cents, minimum_spend_currency, active, created_at, updated_at`

// GetByID loads a room by its identifier. Returns ErrRoomNotFound when no
// row exists.
func (r *RoomRepo) GetByID(ctx context.Context, id string) (*model.Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms WHERE id = ?`
	room, err := scanRoom(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRoomNotFound
	}
	return room, err
}

// ListByRestaurant returns the active rooms of a restaurant ordered by
// name. Inactive rooms are omitted because they are not bookable and the
// catalog surface does not advertise them.
func (r *RoomRepo) ListByRestaurant(ctx context.Context, restaurantID string) ([]model.Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms
	           WHERE restaurant_id = ? AND active = 1
	           ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Room, 0)
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *room)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(row rowScanner) (*model.Room, error) {
	var (
		room          model.Room
		spendCents    sql.NullInt64
		spendCurrency sql.NullString
	)
	if err := row.Scan(
		&room.ID, &room.RestaurantID, &room.Name,
		&room.MinCapacity, &room.MaxCapacity,
		&spendCents, &spendCurrency,
		&room.Active, &room.CreatedAt, &room.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if spendCents.Valid && spendCurrency.Valid {
		room.MinimumSpend = &model.MinimumSpend{
			AmountCents: spendCents.Int64,
			Currency:    spendCurrency.String,
		}
	}
	return &room, nil
}
