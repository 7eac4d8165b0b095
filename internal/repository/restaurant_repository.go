package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/opentable/private-dining/internal/model"
)

// RestaurantRepo reads restaurant catalog data. Like rooms, restaurants
// are read-only to the reservation core.
type RestaurantRepo struct {
	db *sql.DB
}

// NewRestaurantRepo returns a new RestaurantRepo bound to the given database.
func NewRestaurantRepo(db *sql.DB) *RestaurantRepo { return &RestaurantRepo{db: db} }

// GetByID loads a restaurant by its identifier. Returns
// ErrRestaurantNotFound when no row exists.
func (r *RestaurantRepo) GetByID(ctx context.Context, id string) (*model.Restaurant, error) {
	const q = `SELECT id, name, city, created_at, updated_at FROM restaurants WHERE id = ?`
	var res model.Restaurant
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&res.ID, &res.Name, &res.City, &res.CreatedAt, &res.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRestaurantNotFound
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// List returns restaurants ordered by name, optionally filtered by city
// (exact, case-insensitive via the column collation). An empty city
// returns all restaurants.
func (r *RestaurantRepo) List(ctx context.Context, city string) ([]model.Restaurant, error) {
	q := `SELECT id, name, city, created_at, updated_at FROM restaurants`
	args := []any{}
	if city != "" {
		q += ` WHERE city = ?`
		args = append(args, city)
	}
	q += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Restaurant, 0)
	for rows.Next() {
		var res model.Restaurant
		if err := rows.Scan(&res.ID, &res.Name, &res.City, &res.CreatedAt, &res.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}
