package model

import (
	"fmt"
	"strings"
)

// TimeSlot is one of the fixed named service windows offered every day.
// The set is closed: rooms are booked per slot, never per arbitrary time
// range, so the enumeration is defined once here and is not persisted
// per-instance.
type TimeSlot string

const (
	SlotBreakfast TimeSlot = "BREAKFAST"
	SlotLunch     TimeSlot = "LUNCH"
	SlotDinner    TimeSlot = "DINNER"
	SlotLateNight TimeSlot = "LATE_NIGHT"
)

// slotWindows maps each slot to its fixed start and end time of day.
// Times are wall-clock strings (HH:MM) because slots carry no date or
// timezone of their own.
var slotWindows = map[TimeSlot][2]string{
	SlotBreakfast: {"08:30", "10:30"},
	SlotLunch:     {"11:30", "14:30"},
	SlotDinner:    {"17:30", "21:30"},
	SlotLateNight: {"21:30", "23:30"},
}

// AllTimeSlots returns every slot in chronological order. Availability
// grids enumerate this slice so that every day always lists all four
// slots, even when no reservation exists.
func AllTimeSlots() []TimeSlot {
	return []TimeSlot{SlotBreakfast, SlotLunch, SlotDinner, SlotLateNight}
}

// ParseTimeSlot converts a client-supplied string into a TimeSlot.
// Matching is case-insensitive and accepts "late-night" as an alias for
// LATE_NIGHT. Unknown values return an error naming the bad input.
func ParseTimeSlot(s string) (TimeSlot, error) {
	normalized := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	slot := TimeSlot(normalized)
	if _, ok := slotWindows[slot]; !ok {
		return "", fmt.Errorf("unknown time slot %q", s)
	}
	return slot, nil
}

// Valid reports whether the slot is a member of the closed enumeration.
func (t TimeSlot) Valid() bool {
	_, ok := slotWindows[t]
	return ok
}

// Window returns the fixed start and end time of day (HH:MM) for the slot.
func (t TimeSlot) Window() (start, end string) {
	w := slotWindows[t]
	return w[0], w[1]
}

func (t TimeSlot) String() string { return string(t) }
