package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opentable/private-dining/internal/model"
)

func testRoom() *model.Room {
	return &model.Room{
		ID:           "room-1",
		RestaurantID: "rest-1",
		Name:         "The Cellar",
		MinCapacity:  2,
		MaxCapacity:  10,
		MinimumSpend: &model.MinimumSpend{AmountCents: 50000, Currency: "USD"},
		Active:       true,
	}
}

func newTestService(rooms *fakeRoomStore, store *fakeReservationStore, pub *recordingPublisher) *ReservationService {
	availability := NewAvailabilityService(store, nil, time.Minute)
	return NewReservationService(rooms, store, availability, pub)
}

func validRequest(date time.Time) CreateReservationRequest {
	return CreateReservationRequest{
		RoomID:          "room-1",
		ReservationDate: date,
		TimeSlot:        model.SlotDinner,
		PartySize:       4,
		Diner:           Diner{Name: "Ada Diner", Email: "ada@example.com", Phone: "+15550100"},
	}
}

func futureDate() time.Time {
	return model.DateOnly(time.Now().AddDate(0, 0, 14))
}

func TestCreateReservation_Success(t *testing.T) {
	store := newFakeReservationStore()
	pub := &recordingPublisher{}
	svc := newTestService(newFakeRoomStore(testRoom()), store, pub)

	res, err := svc.CreateReservation(context.Background(), validRequest(futureDate()))
	require.NoError(t, err)

	assert.NotEmpty(t, res.ID)
	assert.Equal(t, model.StatusConfirmed, res.Status)
	assert.Equal(t, "rest-1", res.RestaurantID)
	assert.Equal(t, uint64(0), res.Version)
	assert.Equal(t, 1, store.activeCount("room-1", futureDate(), model.SlotDinner))

	created := pub.createdEvents()
	require.Len(t, created, 1)
	assert.Equal(t, res.ID, created[0].ReservationID)
	assert.Equal(t, "The Cellar", created[0].RoomName)
	assert.Equal(t, 4, created[0].PartySize)
}

func TestCreateReservation_RoomNotFound(t *testing.T) {
	svc := newTestService(newFakeRoomStore(), newFakeReservationStore(), &recordingPublisher{})

	req := validRequest(futureDate())
	req.RoomID = "missing"
	_, err := svc.CreateReservation(context.Background(), req)

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "Room", notFound.Resource)
}

func TestCreateReservation_ValidationPipeline(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*CreateReservationRequest)
		mutateRoom func(*model.Room)
		wantReason string
	}{
		{
			name:       "inactive room",
			mutateRoom: func(r *model.Room) { r.Active = false },
			wantReason: "Room is not accepting reservations",
		},
		{
			name:       "party below capacity",
			mutate:     func(req *CreateReservationRequest) { req.PartySize = 1 },
			wantReason: "Party size outside room capacity",
		},
		{
			name:       "party above capacity",
			mutate:     func(req *CreateReservationRequest) { req.PartySize = 15 },
			wantReason: "Party size outside room capacity",
		},
		{
			name: "currency mismatch",
			mutate: func(req *CreateReservationRequest) {
				req.EstimatedSpend = &EstimatedSpend{AmountCents: 60000, Currency: "EUR"}
			},
			wantReason: "Estimated spend must be provided in USD",
		},
		{
			name: "spend below minimum",
			mutate: func(req *CreateReservationRequest) {
				req.EstimatedSpend = &EstimatedSpend{AmountCents: 30000, Currency: "USD"}
			},
			wantReason: "Estimated spend must satisfy minimum",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			room := testRoom()
			if tt.mutateRoom != nil {
				tt.mutateRoom(room)
			}
			store := newFakeReservationStore()
			svc := newTestService(newFakeRoomStore(room), store, &recordingPublisher{})

			req := validRequest(futureDate())
			if tt.mutate != nil {
				tt.mutate(&req)
			}
			_, err := svc.CreateReservation(context.Background(), req)

			var rule *BusinessRuleError
			require.ErrorAs(t, err, &rule)
			assert.Equal(t, tt.wantReason, rule.Reason)
			// A failed admission leaves zero new rows behind.
			assert.Equal(t, 0, store.activeCount("room-1", futureDate(), model.SlotDinner))
		})
	}
}

func TestCreateReservation_SpendCurrencyCaseInsensitive(t *testing.T) {
	svc := newTestService(newFakeRoomStore(testRoom()), newFakeReservationStore(), &recordingPublisher{})

	req := validRequest(futureDate())
	req.EstimatedSpend = &EstimatedSpend{AmountCents: 60000, Currency: "usd"}
	_, err := svc.CreateReservation(context.Background(), req)
	assert.NoError(t, err)
}

func TestCreateReservation_NoSpendCheckWithoutMinimum(t *testing.T) {
	room := testRoom()
	room.MinimumSpend = nil
	svc := newTestService(newFakeRoomStore(room), newFakeReservationStore(), &recordingPublisher{})

	req := validRequest(futureDate())
	req.EstimatedSpend = &EstimatedSpend{AmountCents: 1, Currency: "EUR"}
	_, err := svc.CreateReservation(context.Background(), req)
	assert.NoError(t, err)
}

func TestCreateReservation_SlotTaken(t *testing.T) {
	store := newFakeReservationStore()
	pub := &recordingPublisher{}
	svc := newTestService(newFakeRoomStore(testRoom()), store, pub)

	_, err := svc.CreateReservation(context.Background(), validRequest(futureDate()))
	require.NoError(t, err)

	req := validRequest(futureDate())
	req.Diner.Email = "other@example.com"
	_, err = svc.CreateReservation(context.Background(), req)

	var conflict *SlotConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Contains(t, conflict.Error(), "Room already booked for")
	assert.Contains(t, conflict.Error(), "(DINNER)")
	assert.Equal(t, 1, store.activeCount("room-1", futureDate(), model.SlotDinner))
	assert.Len(t, pub.createdEvents(), 1)
}

// Exactly one of N concurrent attempts on the same tuple may commit; the
// rest must see the same conflict as a failed pre-check.
func TestCreateReservation_ConcurrentSameSlot(t *testing.T) {
	const n = 16
	store := newFakeReservationStore()
	svc := newTestService(newFakeRoomStore(testRoom()), store, &recordingPublisher{})

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := validRequest(futureDate())
			req.Diner.Email = fmt.Sprintf("diner%d@example.com", i)
			_, errs[i] = svc.CreateReservation(context.Background(), req)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var conflict *SlotConflictError
		assert.ErrorAs(t, err, &conflict)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, store.activeCount("room-1", futureDate(), model.SlotDinner))
}

// Distinct slots on the same room and date never contend.
func TestCreateReservation_ConcurrentDisjointSlots(t *testing.T) {
	store := newFakeReservationStore()
	svc := newTestService(newFakeRoomStore(testRoom()), store, &recordingPublisher{})

	slots := model.AllTimeSlots()
	var wg sync.WaitGroup
	errs := make([]error, len(slots))
	for i, slot := range slots {
		wg.Add(1)
		go func(i int, slot model.TimeSlot) {
			defer wg.Done()
			req := validRequest(futureDate())
			req.TimeSlot = slot
			_, errs[i] = svc.CreateReservation(context.Background(), req)
		}(i, slot)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "slot %s", slots[i])
	}
}

// Cancelling frees the tuple for a fresh booking.
func TestCreateReservation_RebookAfterCancel(t *testing.T) {
	store := newFakeReservationStore()
	svc := newTestService(newFakeRoomStore(testRoom()), store, &recordingPublisher{})

	first, err := svc.CreateReservation(context.Background(), validRequest(futureDate()))
	require.NoError(t, err)

	_, err = svc.CancelReservation(context.Background(), first.ID, "diner", "plans changed")
	require.NoError(t, err)

	second, err := svc.CreateReservation(context.Background(), validRequest(futureDate()))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 1, store.activeCount("room-1", futureDate(), model.SlotDinner))
}

func TestCancelReservation_Success(t *testing.T) {
	store := newFakeReservationStore()
	pub := &recordingPublisher{}
	svc := newTestService(newFakeRoomStore(testRoom()), store, pub)

	created, err := svc.CreateReservation(context.Background(), validRequest(futureDate()))
	require.NoError(t, err)

	cancelled, err := svc.CancelReservation(context.Background(), created.ID, "staff:maria", "diner requested")
	require.NoError(t, err)

	assert.Equal(t, model.StatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledBy)
	assert.Equal(t, "staff:maria", *cancelled.CancelledBy)
	require.NotNil(t, cancelled.CancellationReason)
	assert.Equal(t, "diner requested", *cancelled.CancellationReason)
	assert.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, created.Version+1, cancelled.Version)

	evs := pub.cancelledEvents()
	require.Len(t, evs, 1)
	assert.Equal(t, created.ID, evs[0].ReservationID)
	assert.Equal(t, "staff:maria", evs[0].CancelledBy)
}

func TestCancelReservation_NotFound(t *testing.T) {
	svc := newTestService(newFakeRoomStore(testRoom()), newFakeReservationStore(), &recordingPublisher{})

	_, err := svc.CancelReservation(context.Background(), "missing", "diner", "")
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "Reservation", notFound.Resource)
}

func TestCancelReservation_AlreadyCancelled(t *testing.T) {
	svc := newTestService(newFakeRoomStore(testRoom()), newFakeReservationStore(), &recordingPublisher{})

	created, err := svc.CreateReservation(context.Background(), validRequest(futureDate()))
	require.NoError(t, err)
	_, err = svc.CancelReservation(context.Background(), created.ID, "diner", "")
	require.NoError(t, err)

	_, err = svc.CancelReservation(context.Background(), created.ID, "diner", "")
	var rule *BusinessRuleError
	require.ErrorAs(t, err, &rule)
	assert.Equal(t, "Reservation already cancelled", rule.Reason)
}

func TestCancelReservation_PastDate(t *testing.T) {
	store := newFakeReservationStore()
	svc := newTestService(newFakeRoomStore(testRoom()), store, &recordingPublisher{})

	yesterday := model.DateOnly(time.Now().AddDate(0, 0, -1))
	res := &model.Reservation{
		ID:              "res-past",
		RestaurantID:    "rest-1",
		RoomID:          "room-1",
		ReservationDate: yesterday,
		TimeSlot:        model.SlotLunch,
		PartySize:       2,
		DinerName:       "Ada Diner",
		DinerEmail:      "ada@example.com",
		DinerPhone:      "+15550100",
		Status:          model.StatusConfirmed,
	}
	require.NoError(t, store.Create(context.Background(), res))

	_, err := svc.CancelReservation(context.Background(), res.ID, "diner", "")
	var rule *BusinessRuleError
	require.ErrorAs(t, err, &rule)
	assert.Equal(t, "Cannot cancel past reservations", rule.Reason)
}

// Exactly one of M concurrent cancellations commits; the rest fail the
// version check and must be reported as conflicts, never applied.
func TestCancelReservation_ConcurrentCancels(t *testing.T) {
	const m = 8
	store := newFakeReservationStore()
	pub := &recordingPublisher{}
	svc := newTestService(newFakeRoomStore(testRoom()), store, pub)

	created, err := svc.CreateReservation(context.Background(), validRequest(futureDate()))
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, m)
	for i := 0; i < m; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CancelReservation(context.Background(), created.ID, fmt.Sprintf("caller-%d", i), "race")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrOptimisticConflict):
		default:
			// Callers that read after the winner committed fail the
			// already-cancelled precondition instead of the version check.
			var rule *BusinessRuleError
			require.ErrorAs(t, err, &rule)
			assert.Equal(t, "Reservation already cancelled", rule.Reason)
		}
	}
	assert.Equal(t, 1, succeeded)

	final, err := svc.GetReservation(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, final.Status)
	require.NotNil(t, final.CancelledBy)
	assert.Len(t, pub.cancelledEvents(), 1)
}
