package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/opentable/private-dining/internal/model"
)

// mysqlDuplicateEntry is the MySQL error number raised when an insert or
// update violates a unique index.
const mysqlDuplicateEntry = 1062

// dateLayout formats calendar dates for DATE columns.
const dateLayout = "2006-01-02"

// ReservationRepo owns all reads and writes of the reservations table.
// The table is the system's only shared mutable resource: Create is the
// sole insert path and UpdateIfVersionMatches the sole update path, and
// both surface storage conflicts as sentinel errors rather than driver
// errors. All timestamps are stored in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `id, restaurant_id, room_id, reservation_date, time_slot,
	party_size, diner_name, diner_email, diner_phone, status, special_requests,
	cancelled_by, cancellation_reason, cancelled_at, created_at, updated_at, version`

// Create inserts a new reservation row. The uk_room_date_slot_active
// unique index arbitrates concurrent inserts for the same tuple: when a
// competing writer commits first, MySQL rejects this insert with a
// duplicate-key error, which is mapped to ErrSlotTaken. On success the
// row is read back so database-assigned timestamps populate the record.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	const q = `INSERT INTO reservations
		(id, restaurant_id, room_id, reservation_date, time_slot, party_size,
		 diner_name, diner_email, diner_phone, status, special_requests, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)`
	_, err := r.db.ExecContext(ctx, q,
		res.ID, res.RestaurantID, res.RoomID,
		res.ReservationDate.Format(dateLayout), string(res.TimeSlot), res.PartySize,
		res.DinerName, res.DinerEmail, res.DinerPhone,
		string(res.Status), res.SpecialRequests,
	)
	if err != nil {
		var myErr *mysql.MySQLError
		if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
			return ErrSlotTaken
		}
		return err
	}
	// Query back the full row to populate timestamps and defaults.
	const sel = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	stored, err := scanReservation(r.db.QueryRowContext(ctx, sel, res.ID))
	if err != nil {
		return err
	}
	*res = *stored
	return nil
}

// ExistsActive reports whether a PENDING or CONFIRMED reservation holds
// the given (room, date, slot) tuple. This is a point-in-time read: it
// may be stale by the time a subsequent insert runs, so callers use it
// only as a fast pre-check, never as the correctness mechanism.
func (r *ReservationRepo) ExistsActive(ctx context.Context, roomID string, date time.Time, slot model.TimeSlot) (bool, error) {
	const q = `SELECT EXISTS(
		SELECT 1 FROM reservations
		WHERE room_id = ? AND reservation_date = ? AND time_slot = ?
		  AND status IN ('PENDING','CONFIRMED'))`
	var taken bool
	err := r.db.QueryRowContext(ctx, q, roomID, date.Format(dateLayout), string(slot)).Scan(&taken)
	return taken, err
}

// GetByID loads a reservation by its identifier. Returns
// ErrReservationNotFound when no row exists.
func (r *ReservationRepo) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	res, err := scanReservation(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	return res, err
}

// UpdateIfVersionMatches persists the cancellation transition, but only
// when the stored version still equals expectedVersion. The WHERE clause
// makes the read-compare-write atomic inside MySQL: when zero rows match,
// either the row vanished (ErrReservationNotFound) or a concurrent writer
// bumped the version first (ErrVersionConflict). Conflicts are reported,
// never retried here — the caller must re-read and decide.
func (r *ReservationRepo) UpdateIfVersionMatches(ctx context.Context, res *model.Reservation, expectedVersion uint64) error {
	const q = `UPDATE reservations
		SET status = ?, cancelled_by = ?, cancellation_reason = ?, cancelled_at = ?,
		    version = version + 1
		WHERE id = ? AND version = ?`
	result, err := r.db.ExecContext(ctx, q,
		string(res.Status), res.CancelledBy, res.CancellationReason, res.CancelledAt,
		res.ID, expectedVersion,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var exists bool
		const check = `SELECT EXISTS(SELECT 1 FROM reservations WHERE id = ?)`
		if err := r.db.QueryRowContext(ctx, check, res.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrReservationNotFound
		}
		return ErrVersionConflict
	}
	// Read back the committed row so version and timestamps are current.
	const sel = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	stored, err := scanReservation(r.db.QueryRowContext(ctx, sel, res.ID))
	if err != nil {
		return err
	}
	*res = *stored
	return nil
}

// ListByRoomAndDateRange returns every reservation for the room whose
// date falls in [start, end] inclusive, regardless of status. The
// availability grid filters statuses itself so cancelled rows never mask
// a free slot.
func (r *ReservationRepo) ListByRoomAndDateRange(ctx context.Context, roomID string, start, end time.Time) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations
	           WHERE room_id = ? AND reservation_date BETWEEN ? AND ?
	           ORDER BY reservation_date, time_slot`
	return r.queryReservations(ctx, q, roomID, start.Format(dateLayout), end.Format(dateLayout))
}

// ListByDinerEmail returns a diner's reservations ordered by reservation
// date descending. When upcomingOnly is true, only reservations dated
// today or later are returned. Email matching is case-insensitive.
func (r *ReservationRepo) ListByDinerEmail(ctx context.Context, email string, upcomingOnly bool, limit, offset int) ([]model.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations
	      WHERE LOWER(diner_email) = LOWER(?)`
	args := []any{email}
	if upcomingOnly {
		q += ` AND reservation_date >= ?`
		args = append(args, time.Now().UTC().Format(dateLayout))
	}
	q += ` ORDER BY reservation_date DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)
	return r.queryReservations(ctx, q, args...)
}

// ListByRestaurant returns a restaurant's reservations ordered by
// reservation date descending, for staff use.
func (r *ReservationRepo) ListByRestaurant(ctx context.Context, restaurantID string, limit, offset int) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations
	           WHERE restaurant_id = ?
	           ORDER BY reservation_date DESC LIMIT ? OFFSET ?`
	return r.queryReservations(ctx, q, restaurantID, limit, offset)
}

func (r *ReservationRepo) queryReservations(ctx context.Context, q string, args ...any) ([]model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

func scanReservation(row rowScanner) (*model.Reservation, error) {
	var (
		res         model.Reservation
		slot        string
		status      string
		special     sql.NullString
		cancelledBy sql.NullString
		reason      sql.NullString
		cancelledAt sql.NullTime
	)
	if err := row.Scan(
		&res.ID, &res.RestaurantID, &res.RoomID, &res.ReservationDate, &slot,
		&res.PartySize, &res.DinerName, &res.DinerEmail, &res.DinerPhone,
		&status, &special, &cancelledBy, &reason, &cancelledAt,
		&res.CreatedAt, &res.UpdatedAt, &res.Version,
	); err != nil {
		return nil, err
	}
	res.TimeSlot = model.TimeSlot(slot)
	res.Status = model.ReservationStatus(status)
	res.ReservationDate = model.DateOnly(res.ReservationDate)
	if special.Valid {
		s := special.String
		res.SpecialRequests = &s
	}
	if cancelledBy.Valid {
		s := cancelledBy.String
		res.CancelledBy = &s
	}
	if reason.Valid {
		s := reason.String
		res.CancellationReason = &s
	}
	if cancelledAt.Valid {
		t := cancelledAt.Time.UTC()
		res.CancelledAt = &t
	}
	return &res, nil
}
