package service

import (
	"context"
	"sync"
	"time"

	"github.com/opentable/private-dining/internal/events"
	"github.com/opentable/private-dining/internal/model"
	"github.com/opentable/private-dining/internal/repository"
)

// fakeRoomStore serves rooms from a map, mirroring the repository's
// not-found contract.
type fakeRoomStore struct {
	rooms map[string]*model.Room
}

func newFakeRoomStore(rooms ...*model.Room) *fakeRoomStore {
	s := &fakeRoomStore{rooms: make(map[string]*model.Room)}
	for _, r := range rooms {
		s.rooms[r.ID] = r
	}
	return s
}

func (s *fakeRoomStore) GetByID(_ context.Context, id string) (*model.Room, error) {
	room, ok := s.rooms[id]
	if !ok {
		return nil, repository.ErrRoomNotFound
	}
	cp := *room
	return &cp, nil
}

// fakeReservationStore is an in-memory ReservationStore whose mutex
// enforces the same contract as the uk_room_date_slot_active index: at
// most one active reservation per (room, date, slot), checked atomically
// inside Create. Concurrent callers race on the lock exactly as they
// would on the database constraint.
type fakeReservationStore struct {
	mu   sync.Mutex
	byID map[string]*model.Reservation
}

func newFakeReservationStore() *fakeReservationStore {
	return &fakeReservationStore{byID: make(map[string]*model.Reservation)}
}

func (s *fakeReservationStore) Create(_ context.Context, res *model.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.IsActive() &&
			existing.RoomID == res.RoomID &&
			existing.ReservationDate.Equal(res.ReservationDate) &&
			existing.TimeSlot == res.TimeSlot {
			return repository.ErrSlotTaken
		}
	}
	now := time.Now().UTC()
	cp := *res
	cp.CreatedAt = now
	cp.UpdatedAt = now
	s.byID[cp.ID] = &cp
	*res = cp
	return nil
}

func (s *fakeReservationStore) ExistsActive(_ context.Context, roomID string, date time.Time, slot model.TimeSlot) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.IsActive() &&
			existing.RoomID == roomID &&
			existing.ReservationDate.Equal(date) &&
			existing.TimeSlot == slot {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeReservationStore) GetByID(_ context.Context, id string) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrReservationNotFound
	}
	cp := *res
	return &cp, nil
}

func (s *fakeReservationStore) UpdateIfVersionMatches(_ context.Context, res *model.Reservation, expectedVersion uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.byID[res.ID]
	if !ok {
		return repository.ErrReservationNotFound
	}
	if stored.Version != expectedVersion {
		return repository.ErrVersionConflict
	}
	cp := *res
	cp.Version = expectedVersion + 1
	cp.UpdatedAt = time.Now().UTC()
	s.byID[cp.ID] = &cp
	*res = cp
	return nil
}

func (s *fakeReservationStore) ListByRoomAndDateRange(_ context.Context, roomID string, start, end time.Time) ([]model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Reservation, 0)
	for _, res := range s.byID {
		if res.RoomID == roomID && !res.ReservationDate.Before(start) && !res.ReservationDate.After(end) {
			out = append(out, *res)
		}
	}
	return out, nil
}

func (s *fakeReservationStore) ListByDinerEmail(_ context.Context, email string, upcomingOnly bool, limit, offset int) ([]model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	today := model.DateOnly(time.Now())
	out := make([]model.Reservation, 0)
	for _, res := range s.byID {
		if res.DinerEmail != email {
			continue
		}
		if upcomingOnly && res.ReservationDate.Before(today) {
			continue
		}
		out = append(out, *res)
	}
	return out, nil
}

func (s *fakeReservationStore) ListByRestaurant(_ context.Context, restaurantID string, limit, offset int) ([]model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Reservation, 0)
	for _, res := range s.byID {
		if res.RestaurantID == restaurantID {
			out = append(out, *res)
		}
	}
	return out, nil
}

// activeCount reports how many active reservations hold the tuple; the
// uniqueness invariant requires it never exceeds one.
func (s *fakeReservationStore) activeCount(roomID string, date time.Time, slot model.TimeSlot) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, res := range s.byID {
		if res.IsActive() && res.RoomID == roomID && res.ReservationDate.Equal(date) && res.TimeSlot == slot {
			n++
		}
	}
	return n
}

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	mu        sync.Mutex
	created   []events.ReservationCreated
	cancelled []events.ReservationCancelled
}

func (p *recordingPublisher) PublishCreated(ev events.ReservationCreated) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, ev)
}

func (p *recordingPublisher) PublishCancelled(ev events.ReservationCancelled) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelled = append(p.cancelled, ev)
}

func (p *recordingPublisher) createdEvents() []events.ReservationCreated {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.ReservationCreated(nil), p.created...)
}

func (p *recordingPublisher) cancelledEvents() []events.ReservationCancelled {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.ReservationCancelled(nil), p.cancelled...)
}
