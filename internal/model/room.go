package model

import "time"

// MinimumSpend is the spend floor a room may impose on bookings, with the
// ISO currency code the estimate must be quoted in. Amounts are stored in
// minor units (cents) to avoid floating point in money comparisons.
type MinimumSpend struct {
	AmountCents int64  `json:"amount_cents"` // rooms.minimum_spend_cents
	Currency    string `json:"currency"`     // rooms.minimum_spend_currency
}

// Room is a private dining room belonging to a restaurant. Rooms are
// mutated only by catalog management; the reservation core reads them to
// validate booking requests and treats every field as immutable for the
// duration of a request.
//
// Fields:
//  ID           – primary key (UUID string).
//  RestaurantID – owning restaurant.
//  Name         – room display name, carried into domain events.
//  MinCapacity  – smallest party the room accepts (>= 1).
//  MaxCapacity  – largest party the room accepts (>= MinCapacity).
//  MinimumSpend – optional spend floor (nil when the room imposes none).
//  Active       – inactive rooms reject all new reservations.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Room struct {
	ID           string        `json:"id"`            // rooms.id
	RestaurantID string        `json:"restaurant_id"` // rooms.restaurant_id
	Name         string        `json:"name"`          // rooms.name
	MinCapacity  int           `json:"min_capacity"`  // rooms.min_capacity
	MaxCapacity  int           `json:"max_capacity"`  // rooms.max_capacity
	MinimumSpend *MinimumSpend `json:"minimum_spend,omitempty"`
	Active       bool          `json:"active"`     // rooms.active
	CreatedAt    time.Time     `json:"created_at"` // rooms.created_at
	UpdatedAt    time.Time     `json:"updated_at"` // rooms.updated_at
}

// CanHost reports whether the party size falls inside the room's
// inclusive capacity range.
func (r *Room) CanHost(partySize int) bool {
	return partySize >= r.MinCapacity && partySize <= r.MaxCapacity
}
