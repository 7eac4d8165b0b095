package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeSlot(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    TimeSlot
		wantErr bool
	}{
		{name: "canonical", input: "DINNER", want: SlotDinner},
		{name: "lowercase", input: "breakfast", want: SlotBreakfast},
		{name: "hyphen alias", input: "late-night", want: SlotLateNight},
		{name: "underscore", input: "LATE_NIGHT", want: SlotLateNight},
		{name: "surrounding space", input: "  lunch ", want: SlotLunch},
		{name: "unknown", input: "BRUNCH", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimeSlot(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAllTimeSlots_ChronologicalAndComplete(t *testing.T) {
	slots := AllTimeSlots()
	require.Len(t, slots, 4)
	assert.Equal(t, []TimeSlot{SlotBreakfast, SlotLunch, SlotDinner, SlotLateNight}, slots)

	for _, slot := range slots {
		assert.True(t, slot.Valid())
	}
}

func TestTimeSlot_Window(t *testing.T) {
	start, end := SlotDinner.Window()
	assert.Equal(t, "17:30", start)
	assert.Equal(t, "21:30", end)

	start, end = SlotBreakfast.Window()
	assert.Equal(t, "08:30", start)
	assert.Equal(t, "10:30", end)
}
