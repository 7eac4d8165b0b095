package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/opentable/private-dining/internal/model"
)

// slotTakenReason is the reason attached to unavailable slots in the grid.
const slotTakenReason = "Already booked"

// AvailabilityStore is the slice of the reservation store the oracle
// reads from.
type AvailabilityStore interface {
	ExistsActive(ctx context.Context, roomID string, date time.Time, slot model.TimeSlot) (bool, error)
	ListByRoomAndDateRange(ctx context.Context, roomID string, start, end time.Time) ([]model.Reservation, error)
}

// SlotAvailability is one cell of the availability grid.
type SlotAvailability struct {
	TimeSlot  model.TimeSlot `json:"time_slot"`
	Available bool           `json:"available"`
	Reason    *string        `json:"reason,omitempty"`
}

// DayAvailability lists every slot of a single calendar date.
type DayAvailability struct {
	Date  string             `json:"date"`
	Slots []SlotAvailability `json:"slots"`
}

// AvailabilityGrid is the full per-day, per-slot calendar for a room.
type AvailabilityGrid struct {
	RoomID string            `json:"room_id"`
	Days   []DayAvailability `json:"days"`
}

// AvailabilityService answers slot availability questions. Grid reads go
// through a read-through Redis cache keyed by room and date range; the
// point check used by the admission pipeline always hits the store
// directly, because a stale answer on the write path would widen the
// race window the storage constraint exists to close.
type AvailabilityService struct {
	store AvailabilityStore
	cache *redis.Client // nil disables caching
	ttl   time.Duration
}

// NewAvailabilityService constructs the oracle. cache may be nil, in
// which case every grid request recomputes from the store.
func NewAvailabilityService(store AvailabilityStore, cache *redis.Client, ttl time.Duration) *AvailabilityService {
	if store == nil {
		panic("nil store passed to NewAvailabilityService")
	}
	return &AvailabilityService{store: store, cache: cache, ttl: ttl}
}

// IsSlotAvailable reports whether no active reservation holds the tuple.
// This is a non-authoritative, point-in-time read: it may be stale by the
// time a create is attempted, so it serves only as a fast, user-facing
// pre-check. It never consults the grid cache.
func (s *AvailabilityService) IsSlotAvailable(ctx context.Context, roomID string, date time.Time, slot model.TimeSlot) (bool, error) {
	taken, err := s.store.ExistsActive(ctx, roomID, model.DateOnly(date), slot)
	if err != nil {
		return false, err
	}
	return !taken, nil
}

// GetAvailability produces the slot-by-slot calendar for every date in
// [start, end] inclusive. All four slots are enumerated for every day
// even when no reservation exists in range; cancelled reservations never
// mark a slot unavailable.
func (s *AvailabilityService) GetAvailability(ctx context.Context, roomID string, start, end time.Time) (*AvailabilityGrid, error) {
	start = model.DateOnly(start)
	end = model.DateOnly(end)
	if end.Before(start) {
		return nil, &BusinessRuleError{Reason: "End date must not be before start date"}
	}

	key := gridCacheKey(roomID, start, end)
	if grid := s.cacheGet(ctx, key); grid != nil {
		return grid, nil
	}

	reservations, err := s.store.ListByRoomAndDateRange(ctx, roomID, start, end)
	if err != nil {
		return nil, err
	}

	// Index active reservations by date and slot; cancelled rows are
	// skipped so a freed slot shows as available again.
	taken := make(map[string]map[model.TimeSlot]bool)
	for i := range reservations {
		res := &reservations[i]
		if !res.IsActive() {
			continue
		}
		day := res.ReservationDate.Format("2006-01-02")
		if taken[day] == nil {
			taken[day] = make(map[model.TimeSlot]bool)
		}
		taken[day][res.TimeSlot] = true
	}

	grid := &AvailabilityGrid{RoomID: roomID, Days: make([]DayAvailability, 0)}
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		dayKey := day.Format("2006-01-02")
		slots := make([]SlotAvailability, 0, len(model.AllTimeSlots()))
		for _, slot := range model.AllTimeSlots() {
			cell := SlotAvailability{TimeSlot: slot, Available: !taken[dayKey][slot]}
			if !cell.Available {
				reason := slotTakenReason
				cell.Reason = &reason
			}
			slots = append(slots, cell)
		}
		grid.Days = append(grid.Days, DayAvailability{Date: dayKey, Slots: slots})
	}

	s.cacheSet(ctx, key, grid)
	return grid, nil
}

func gridCacheKey(roomID string, start, end time.Time) string {
	return fmt.Sprintf("availability:%s:%s:%s",
		roomID, start.Format("2006-01-02"), end.Format("2006-01-02"))
}

func (s *AvailabilityService) cacheGet(ctx context.Context, key string) *AvailabilityGrid {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		return nil // miss or Redis unavailable; recompute either way
	}
	var grid AvailabilityGrid
	if err := json.Unmarshal(raw, &grid); err != nil {
		return nil
	}
	return &grid
}

func (s *AvailabilityService) cacheSet(ctx context.Context, key string, grid *AvailabilityGrid) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(grid)
	if err != nil {
		return
	}
	if err := s.cache.SetEx(ctx, key, raw, s.ttl).Err(); err != nil {
		log.Printf("availability: cache set failed for %s: %v", key, err)
	}
}
