package listener

import (
	"log"

	"github.com/opentable/private-dining/internal/events"
)

// Auditor records an audit trail entry per state change.
type Auditor struct{}

// RegisterAudit subscribes the auditor on the bus.
func RegisterAudit(bus *events.Bus) {
	a := &Auditor{}
	bus.SubscribeCreated(a.HandleCreated)
	bus.SubscribeCancelled(a.HandleCancelled)
}

// HandleCreated records the creation of a reservation.
func (a *Auditor) HandleCreated(ev events.ReservationCreated) {
	log.Printf("[audit] RESERVATION_CREATED reservation=%s restaurant=%s room=%s date=%s slot=%s diner=%s",
		ev.ReservationID, ev.RestaurantID, ev.RoomID, ev.ReservationDate, ev.TimeSlot, ev.DinerEmail)
}

// HandleCancelled records who cancelled a reservation and why.
func (a *Auditor) HandleCancelled(ev events.ReservationCancelled) {
	log.Printf("[audit] RESERVATION_CANCELLED reservation=%s cancelled_by=%s reason=%q at=%s",
		ev.ReservationID, ev.CancelledBy, ev.Reason, ev.CancelledAt)
}
