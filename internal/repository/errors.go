// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// services to distinguish between different failure scenarios without
// depending on driver-specific error types.
package repository

import "errors"

// ErrRoomNotFound is returned when a room identifier does not resolve.
var ErrRoomNotFound = errors.New("room not found")

// ErrRestaurantNotFound is returned when a restaurant identifier does not
// resolve.
var ErrRestaurantNotFound = errors.New("restaurant not found")

// ErrReservationNotFound is returned when a reservation identifier does
// not resolve.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrSlotTaken is returned when an insert loses the race on the
// uk_room_date_slot_active unique index, i.e. another active reservation
// already holds the same (room, date, slot) tuple. It is the storage
// layer's final answer: callers that passed the availability pre-check
// can still receive it.
var ErrSlotTaken = errors.New("slot already reserved")

// ErrVersionConflict is returned when a conditional update matches the
// row id but not the expected version, meaning another writer committed
// first. Callers must re-read and decide; repositories never retry.
var ErrVersionConflict = errors.New("version conflict")
