package listener

import (
	"log"
	"sync/atomic"

	"github.com/opentable/private-dining/internal/events"
)

// Analytics keeps simple in-process counters of booking activity. The
// counters are process-local and reset on restart; they exist to feed
// periodic log lines, not durable metrics.
type Analytics struct {
	created   atomic.Uint64
	cancelled atomic.Uint64
}

// RegisterAnalytics subscribes an analytics tracker on the bus and
// returns it so callers can read the counters.
func RegisterAnalytics(bus *events.Bus) *Analytics {
	a := &Analytics{}
	bus.SubscribeCreated(a.HandleCreated)
	bus.SubscribeCancelled(a.HandleCancelled)
	return a
}

// HandleCreated counts a new booking.
func (a *Analytics) HandleCreated(ev events.ReservationCreated) {
	total := a.created.Add(1)
	log.Printf("[analytics] bookings=%d (+%s slot=%s party=%d)", total, ev.ReservationID, ev.TimeSlot, ev.PartySize)
}

// HandleCancelled counts a cancellation.
func (a *Analytics) HandleCancelled(ev events.ReservationCancelled) {
	total := a.cancelled.Add(1)
	log.Printf("[analytics] cancellations=%d (+%s)", total, ev.ReservationID)
}

// Created returns the number of creation events seen.
func (a *Analytics) Created() uint64 { return a.created.Load() }

// Cancelled returns the number of cancellation events seen.
func (a *Analytics) Cancelled() uint64 { return a.cancelled.Load() }
