package model

import "time"

// ReservationStatus enumerates the reservation lifecycle. PENDING is part
// of the model and counts as active for the uniqueness invariant, but no
// current code path creates it; reservations are written as CONFIRMED and
// the only transition is to CANCELLED, which is terminal.
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "PENDING"
	StatusConfirmed ReservationStatus = "CONFIRMED"
	StatusCancelled ReservationStatus = "CANCELLED"
)

// ActiveStatuses lists the statuses that occupy a (room, date, slot)
// tuple. At most one reservation in these statuses may exist per tuple;
// cancelled rows never count.
var ActiveStatuses = []ReservationStatus{StatusPending, StatusConfirmed}

// Reservation is the single shared mutable record of the system. Rows are
// inserted by the admission pipeline and thereafter only ever change by
// the cancellation transition, which is guarded by the Version counter.
// All timestamps are UTC; ReservationDate is a calendar date (zero
// time-of-day, UTC).
type Reservation struct {
	ID                 string            `json:"id"`               // reservations.id
	RestaurantID       string            `json:"restaurant_id"`    // reservations.restaurant_id
	RoomID             string            `json:"room_id"`          // reservations.room_id
	ReservationDate    time.Time         `json:"reservation_date"` // reservations.reservation_date
	TimeSlot           TimeSlot          `json:"time_slot"`        // reservations.time_slot
	PartySize          int               `json:"party_size"`       // reservations.party_size
	DinerName          string            `json:"diner_name"`       // reservations.diner_name
	DinerEmail         string            `json:"diner_email"`      // reservations.diner_email
	DinerPhone         string            `json:"diner_phone"`      // reservations.diner_phone
	Status             ReservationStatus `json:"status"`           // reservations.status
	SpecialRequests    *string           `json:"special_requests,omitempty"`
	CancelledBy        *string           `json:"cancelled_by,omitempty"` // set only on cancellation
	CancellationReason *string           `json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time        `json:"cancelled_at,omitempty"`
	CreatedAt          time.Time         `json:"created_at"` // reservations.created_at
	UpdatedAt          time.Time         `json:"updated_at"` // reservations.updated_at
	Version            uint64            `json:"version"`    // optimistic concurrency counter
}

// IsActive reports whether the reservation occupies its slot.
func (r *Reservation) IsActive() bool {
	for _, s := range ActiveStatuses {
		if r.Status == s {
			return true
		}
	}
	return false
}

// DateOnly normalises a timestamp to its calendar date at midnight UTC.
// Reservation dates are always stored in this form so date comparisons
// are exact.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
