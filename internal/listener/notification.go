// Package listener holds the background consumers of reservation domain
// events: notification, audit, and analytics. Each registers explicitly
// on the event bus at startup and influences no admission decision;
// handlers run on the bus worker pool and their failures never touch the
// reservation that triggered them.
package listener

import (
	"log"

	"github.com/opentable/private-dining/internal/events"
)

// Notifier simulates sending confirmation and cancellation emails to
// diners. A real deployment would swap the log calls for an email
// provider client behind the same methods.
type Notifier struct{}

// RegisterNotifications subscribes the notifier on the bus.
func RegisterNotifications(bus *events.Bus) {
	n := &Notifier{}
	bus.SubscribeCreated(n.HandleCreated)
	bus.SubscribeCancelled(n.HandleCancelled)
}

// HandleCreated sends the booking confirmation for a new reservation.
func (n *Notifier) HandleCreated(ev events.ReservationCreated) {
	log.Printf("[notification] confirmation email to %s for reservation %s: %s at %s on %s (party of %d)",
		ev.DinerEmail, ev.ReservationID, ev.RoomName, ev.TimeSlot, ev.ReservationDate, ev.PartySize)
}

// HandleCancelled sends the cancellation notice.
func (n *Notifier) HandleCancelled(ev events.ReservationCancelled) {
	log.Printf("[notification] cancellation email to %s for reservation %s (%s on %s)",
		ev.DinerEmail, ev.ReservationID, ev.TimeSlot, ev.ReservationDate)
}
