// Package service implements the reservation admission pipeline, the
// cancellation transition, and the availability oracle. Failures are
// reported as a small taxonomy of typed errors so transport layers can
// map them to status codes without string matching.
package service

import (
	"errors"
	"fmt"

	"github.com/opentable/private-dining/internal/model"
)

// NotFoundError reports that an identifier did not resolve. Terminal to
// the request; never retried.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// BusinessRuleError reports a deterministic rule violation (inactive
// room, capacity, spend, cancellation preconditions). The caller must
// change the request; retrying the same request always fails again.
type BusinessRuleError struct {
	Reason string
}

func (e *BusinessRuleError) Error() string { return e.Reason }

// SlotConflictError reports that the requested (room, date, slot) tuple
// is held by an active reservation. Both the pre-check and a lost race on
// the storage constraint surface this same error, so callers cannot tell
// "lost the race" from "was already full" — either way, pick another slot.
type SlotConflictError struct {
	Date string
	Slot model.TimeSlot
}

func (e *SlotConflictError) Error() string {
	return fmt.Sprintf("Room already booked for %s (%s)", e.Date, e.Slot)
}

// ErrOptimisticConflict is returned when a cancellation loses the version
// race against a concurrent writer. The caller may re-read the current
// record and retry the intended action; the service never retries.
var ErrOptimisticConflict = errors.New("reservation was modified by another request")
