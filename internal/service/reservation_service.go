package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/opentable/private-dining/internal/events"
	"github.com/opentable/private-dining/internal/model"
	"github.com/opentable/private-dining/internal/repository"
)

// RoomStore is the read-only room lookup the admission pipeline consumes.
type RoomStore interface {
	GetByID(ctx context.Context, id string) (*model.Room, error)
}

// ReservationStore is the persistence contract for reservations. Create
// must fail with repository.ErrSlotTaken when the storage-level
// uniqueness constraint rejects the insert, and UpdateIfVersionMatches
// must fail with repository.ErrVersionConflict when the conditional
// update loses the version race.
type ReservationStore interface {
	Create(ctx context.Context, res *model.Reservation) error
	ExistsActive(ctx context.Context, roomID string, date time.Time, slot model.TimeSlot) (bool, error)
	GetByID(ctx context.Context, id string) (*model.Reservation, error)
	UpdateIfVersionMatches(ctx context.Context, res *model.Reservation, expectedVersion uint64) error
	ListByRoomAndDateRange(ctx context.Context, roomID string, start, end time.Time) ([]model.Reservation, error)
	ListByDinerEmail(ctx context.Context, email string, upcomingOnly bool, limit, offset int) ([]model.Reservation, error)
	ListByRestaurant(ctx context.Context, restaurantID string, limit, offset int) ([]model.Reservation, error)
}

// Diner identifies the person a reservation is booked for.
type Diner struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// EstimatedSpend is an optional spend estimate supplied with a booking
// request, checked against the room's minimum spend when both exist.
type EstimatedSpend struct {
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
}

// CreateReservationRequest carries everything the admission pipeline
// needs to decide a booking.
type CreateReservationRequest struct {
	RoomID          string
	ReservationDate time.Time
	TimeSlot        model.TimeSlot
	PartySize       int
	Diner           Diner
	EstimatedSpend  *EstimatedSpend
	SpecialRequests *string
}

// ReservationService is the admission controller and cancellation
// handler. It is stateless: it holds only references to its storage and
// event dependencies, injected once at startup. No in-process lock
// serializes booking attempts — the storage uniqueness constraint is the
// sole serialization point, so unrelated slots proceed fully in parallel.
type ReservationService struct {
	rooms        RoomStore
	reservations ReservationStore
	availability *AvailabilityService
	publisher    events.Publisher
}

// NewReservationService wires the admission controller. All dependencies
// must be non-nil.
func NewReservationService(rooms RoomStore, reservations ReservationStore, availability *AvailabilityService, publisher events.Publisher) *ReservationService {
	if rooms == nil || reservations == nil || availability == nil || publisher == nil {
		panic("nil dependency passed to NewReservationService")
	}
	return &ReservationService{
		rooms:        rooms,
		reservations: reservations,
		availability: availability,
		publisher:    publisher,
	}
}

// CreateReservation runs the validation pipeline in order, short-
// circuiting on the first failure, then attempts the guarded insert.
// The availability pre-check is an optimization for fast rejections; a
// concurrent writer can still slip between the check and the insert, in
// which case the storage constraint rejects the insert and the caller
// sees the same conflict as a failed pre-check. On success exactly one
// row is created and a ReservationCreated event is dispatched in the
// background.
func (s *ReservationService) CreateReservation(ctx context.Context, req CreateReservationRequest) (*model.Reservation, error) {
	date := model.DateOnly(req.ReservationDate)
	log.Printf("reservations: creating for room %s on %s (%s)", req.RoomID, date.Format("2006-01-02"), req.TimeSlot)

	room, err := s.rooms.GetByID(ctx, req.RoomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, &NotFoundError{Resource: "Room", ID: req.RoomID}
		}
		return nil, err
	}
	if !room.Active {
		return nil, &BusinessRuleError{Reason: "Room is not accepting reservations"}
	}
	if !room.CanHost(req.PartySize) {
		return nil, &BusinessRuleError{Reason: "Party size outside room capacity"}
	}
	if req.EstimatedSpend != nil && room.MinimumSpend != nil {
		if !strings.EqualFold(req.EstimatedSpend.Currency, room.MinimumSpend.Currency) {
			return nil, &BusinessRuleError{
				Reason: fmt.Sprintf("Estimated spend must be provided in %s", room.MinimumSpend.Currency),
			}
		}
		if req.EstimatedSpend.AmountCents < room.MinimumSpend.AmountCents {
			return nil, &BusinessRuleError{Reason: "Estimated spend must satisfy minimum"}
		}
	}

	available, err := s.availability.IsSlotAvailable(ctx, req.RoomID, date, req.TimeSlot)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, &SlotConflictError{Date: date.Format("2006-01-02"), Slot: req.TimeSlot}
	}

	res := &model.Reservation{
		ID:              uuid.New().String(),
		RestaurantID:    room.RestaurantID,
		RoomID:          room.ID,
		ReservationDate: date,
		TimeSlot:        req.TimeSlot,
		PartySize:       req.PartySize,
		DinerName:       req.Diner.Name,
		DinerEmail:      req.Diner.Email,
		DinerPhone:      req.Diner.Phone,
		Status:          model.StatusConfirmed,
		SpecialRequests: req.SpecialRequests,
	}
	if err := s.reservations.Create(ctx, res); err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			// Lost the race between pre-check and insert; indistinguishable
			// from a failed pre-check by design of the error contract.
			return nil, &SlotConflictError{Date: date.Format("2006-01-02"), Slot: req.TimeSlot}
		}
		return nil, err
	}

	s.publisher.PublishCreated(events.ReservationCreated{
		ReservationID:   res.ID,
		RestaurantID:    res.RestaurantID,
		RoomID:          res.RoomID,
		RoomName:        room.Name,
		ReservationDate: events.FormatDate(res.ReservationDate),
		TimeSlot:        res.TimeSlot,
		PartySize:       res.PartySize,
		DinerName:       res.DinerName,
		DinerEmail:      res.DinerEmail,
		DinerPhone:      res.DinerPhone,
		SpecialRequests: deref(res.SpecialRequests),
		CreatedAt:       events.FormatTime(res.CreatedAt),
	})

	log.Printf("reservations: created %s for room %s on %s", res.ID, room.ID, events.FormatDate(res.ReservationDate))
	return res, nil
}

// GetReservation fetches a reservation by id.
func (s *ReservationService) GetReservation(ctx context.Context, id string) (*model.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if errors.Is(err, repository.ErrReservationNotFound) {
		return nil, &NotFoundError{Resource: "Reservation", ID: id}
	}
	return res, err
}

// CancelReservation transitions a reservation to CANCELLED. The update
// is conditioned on the version read here still being current at commit
// time; a concurrent cancellation wins the version race and this call
// reports ErrOptimisticConflict without retrying. Cancellation is
// terminal and frees the slot for rebooking.
func (s *ReservationService) CancelReservation(ctx context.Context, id, cancelledBy, reason string) (*model.Reservation, error) {
	res, err := s.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.Status == model.StatusCancelled {
		return nil, &BusinessRuleError{Reason: "Reservation already cancelled"}
	}
	today := model.DateOnly(time.Now())
	if res.ReservationDate.Before(today) {
		return nil, &BusinessRuleError{Reason: "Cannot cancel past reservations"}
	}

	now := time.Now().UTC()
	expectedVersion := res.Version
	res.Status = model.StatusCancelled
	res.CancelledBy = &cancelledBy
	res.CancelledAt = &now
	if reason != "" {
		res.CancellationReason = &reason
	}
	if err := s.reservations.UpdateIfVersionMatches(ctx, res, expectedVersion); err != nil {
		switch {
		case errors.Is(err, repository.ErrVersionConflict):
			return nil, ErrOptimisticConflict
		case errors.Is(err, repository.ErrReservationNotFound):
			return nil, &NotFoundError{Resource: "Reservation", ID: id}
		}
		return nil, err
	}

	roomName := ""
	if room, err := s.rooms.GetByID(ctx, res.RoomID); err == nil {
		roomName = room.Name
	} else {
		log.Printf("reservations: room lookup for cancellation event failed: %v", err)
	}
	s.publisher.PublishCancelled(events.ReservationCancelled{
		ReservationID:   res.ID,
		RestaurantID:    res.RestaurantID,
		RoomID:          res.RoomID,
		RoomName:        roomName,
		ReservationDate: events.FormatDate(res.ReservationDate),
		TimeSlot:        res.TimeSlot,
		DinerName:       res.DinerName,
		DinerEmail:      res.DinerEmail,
		CancelledBy:     cancelledBy,
		Reason:          reason,
		CancelledAt:     events.FormatTime(*res.CancelledAt),
	})

	log.Printf("reservations: cancelled %s by %s", res.ID, cancelledBy)
	return res, nil
}

// ListByDiner returns a diner's reservations, newest reservation date
// first. upcomingOnly restricts results to today or later.
func (s *ReservationService) ListByDiner(ctx context.Context, email string, upcomingOnly bool, limit, offset int) ([]model.Reservation, error) {
	return s.reservations.ListByDinerEmail(ctx, email, upcomingOnly, limit, offset)
}

// ListByRestaurant returns a restaurant's reservations for staff.
func (s *ReservationService) ListByRestaurant(ctx context.Context, restaurantID string, limit, offset int) ([]model.Reservation, error) {
	return s.reservations.ListByRestaurant(ctx, restaurantID, limit, offset)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
