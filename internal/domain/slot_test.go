package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeWindow(t *testing.T) {
	w, err := ParseTimeWindow("09:00 - 11:30")
	require.NoError(t, err)
	assert.Equal(t, TimeWindow{Start: "09:00", End: "11:30"}, w)
	assert.Equal(t, "09:00 - 11:30", w.String())
	assert.Equal(t, 2.5, w.DurationHours())

	compact, err := ParseTimeWindow("09:00-11:30")
	require.NoError(t, err)
	assert.Equal(t, w, compact)

	for _, bad := range []string{"", "09:00", "9:00 - 11:00", "09:00 - 25:00", "a - b", "09:00 - 10:00 - 11:00"} {
		_, err := ParseTimeWindow(bad)
		assert.ErrorIs(t, err, ErrInvalidInput, bad)
	}
}

func TestTimeWindowEndingAtMidnight(t *testing.T) {
	w, err := ParseTimeWindow("22:00 - 24:00")
	require.NoError(t, err)
	require.NoError(t, w.Validate())
	assert.Equal(t, 2.0, w.DurationHours())
	assert.True(t, w.CanHost(2))
	assert.False(t, w.CanHost(3))

	_, err = NewTimeWindow("24:00", "24:00")
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestTimeWindowOverlaps(t *testing.T) {
	a := TimeWindow{Start: "09:00", End: "11:00"}

	assert.True(t, a.Overlaps(TimeWindow{Start: "10:00", End: "12:00"}))
	assert.True(t, a.Overlaps(TimeWindow{Start: "09:30", End: "10:00"}))
	assert.False(t, a.Overlaps(TimeWindow{Start: "11:00", End: "12:00"}))
	assert.False(t, a.Overlaps(TimeWindow{Start: "07:00", End: "09:00"}))
}

func TestTimeWindowJSON(t *testing.T) {
	type payload struct {
		Window TimeWindow `json:"window"`
		Day    WeekDay    `json:"day"`
	}

	raw, err := json.Marshal(payload{Window: TimeWindow{Start: "13:00", End: "14:00"}, Day: Thursday})
	require.NoError(t, err)
	assert.JSONEq(t, `{"window":"13:00 - 14:00","day":"Thursday"}`, string(raw))

	var decoded payload
	require.NoError(t, json.Unmarshal([]byte(`{"window":"13:00 - 14:00","day":"thursday"}`), &decoded))
	assert.Equal(t, Thursday, decoded.Day)
	assert.Equal(t, TimeWindow{Start: "13:00", End: "14:00"}, decoded.Window)
}

func TestWeekDayConversions(t *testing.T) {
	for _, d := range AllWeekDays() {
		assert.Equal(t, d, WeekDayOf(d.Weekday()))
	}
	assert.Equal(t, time.Monday, Monday.Weekday())
	assert.Equal(t, time.Sunday, Sunday.Weekday())

	_, err := ParseWeekDay("Funday")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
