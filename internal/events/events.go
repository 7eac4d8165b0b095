// Package events defines the domain events emitted after successful
// reservation state changes and the in-process bus that delivers them.
// Delivery is best-effort and at-most-once: events are dispatched on a
// bounded background worker pool after the triggering transaction has
// committed, and a failed or dropped delivery never rolls back or retries
// the state change.
package events

import (
	"log"
	"sync"
	"time"

	"github.com/opentable/private-dining/internal/model"
)

// ReservationCreated is published when the admission pipeline commits a
// new reservation. It carries enough information for downstream
// consumers to notify, audit, or track analytics without querying the
// primary database.
type ReservationCreated struct {
	ReservationID   string         `json:"reservation_id"`
	RestaurantID    string         `json:"restaurant_id"`
	RoomID          string         `json:"room_id"`
	RoomName        string         `json:"room_name"`
	ReservationDate string         `json:"reservation_date"`
	TimeSlot        model.TimeSlot `json:"time_slot"`
	PartySize       int            `json:"party_size"`
	DinerName       string         `json:"diner_name"`
	DinerEmail      string         `json:"diner_email"`
	DinerPhone      string         `json:"diner_phone"`
	SpecialRequests string         `json:"special_requests,omitempty"`
	CreatedAt       string         `json:"created_at"`
}

// ReservationCancelled is published when a reservation transitions to
// CANCELLED.
type ReservationCancelled struct {
	ReservationID   string         `json:"reservation_id"`
	RestaurantID    string         `json:"restaurant_id"`
	RoomID          string         `json:"room_id"`
	RoomName        string         `json:"room_name"`
	ReservationDate string         `json:"reservation_date"`
	TimeSlot        model.TimeSlot `json:"time_slot"`
	DinerName       string         `json:"diner_name"`
	DinerEmail      string         `json:"diner_email"`
	CancelledBy     string         `json:"cancelled_by"`
	Reason          string         `json:"reason,omitempty"`
	CancelledAt     string         `json:"cancelled_at"`
}

// Publisher is the narrow interface the services depend on. The Bus
// implements it; tests substitute a recording fake.
type Publisher interface {
	PublishCreated(ev ReservationCreated)
	PublishCancelled(ev ReservationCancelled)
}

// Bus fans typed events out to explicitly registered subscribers on a
// bounded worker pool. Publishing never blocks the caller: when the
// queue is full the event is dropped and logged, keeping the booking
// response path independent of slow consumers.
type Bus struct {
	mu            sync.RWMutex
	createdSubs   []func(ReservationCreated)
	cancelledSubs []func(ReservationCancelled)

	tasks chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

// NewBus constructs a Bus with the given number of worker goroutines and
// pending-event capacity. Values below 1 are clamped.
func NewBus(workers, queueSize int) *Bus {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	b := &Bus{tasks: make(chan func(), queueSize)}
	b.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer b.wg.Done()
			for task := range b.tasks {
				task()
			}
		}()
	}
	return b
}

// SubscribeCreated registers a handler for ReservationCreated events.
// Registration happens at startup, before any publish.
func (b *Bus) SubscribeCreated(fn func(ReservationCreated)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.createdSubs = append(b.createdSubs, fn)
}

// SubscribeCancelled registers a handler for ReservationCancelled events.
func (b *Bus) SubscribeCancelled(fn func(ReservationCancelled)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cancelledSubs = append(b.cancelledSubs, fn)
}

// PublishCreated enqueues the event for every created-subscriber.
func (b *Bus) PublishCreated(ev ReservationCreated) {
	b.mu.RLock()
	subs := append(([]func(ReservationCreated))(nil), b.createdSubs...)
	b.mu.RUnlock()
	for _, fn := range subs {
		b.dispatch(func() { fn(ev) }, "reservation.created", ev.ReservationID)
	}
}

// PublishCancelled enqueues the event for every cancelled-subscriber.
func (b *Bus) PublishCancelled(ev ReservationCancelled) {
	b.mu.RLock()
	subs := append(([]func(ReservationCancelled))(nil), b.cancelledSubs...)
	b.mu.RUnlock()
	for _, fn := range subs {
		b.dispatch(func() { fn(ev) }, "reservation.cancelled", ev.ReservationID)
	}
}

func (b *Bus) dispatch(task func(), kind, id string) {
	select {
	case b.tasks <- task:
	default:
		log.Printf("events: queue full, dropping %s for reservation %s", kind, id)
	}
}

// Close stops accepting work and waits for in-flight handlers to finish.
func (b *Bus) Close() {
	b.once.Do(func() { close(b.tasks) })
	b.wg.Wait()
}

// FormatDate renders a reservation date the way events carry it.
func FormatDate(t time.Time) string { return t.Format("2006-01-02") }

// FormatTime renders an event timestamp in RFC 3339 UTC.
func FormatTime(t time.Time) string { return t.UTC().Format(time.RFC3339) }
