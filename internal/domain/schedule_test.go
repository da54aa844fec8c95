package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TutorBooking/pkg/ptr"
	"github.com/m04kA/SMC-TutorBooking/pkg/types"
)

func mustWindow(t *testing.T, s string) TimeWindow {
	t.Helper()
	w, err := ParseTimeWindow(s)
	require.NoError(t, err)
	require.NoError(t, w.Validate())
	return w
}

func TestAddWindowCapacity(t *testing.T) {
	s, err := NewWeeklySchedule(DayAvailability{
		Day: Monday,
		Windows: []TimeWindow{
			mustWindow(t, "08:00 - 09:00"),
			mustWindow(t, "10:00 - 11:00"),
			mustWindow(t, "12:00 - 13:00"),
		},
	})
	require.NoError(t, err)

	next, err := s.AddWindow(Monday, mustWindow(t, "15:00 - 16:00"))
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Len(t, next.Windows(Monday), 3)
	assert.Len(t, s.Windows(Monday), 3)
}

func TestAddWindowRejectsInvalid(t *testing.T) {
	var s WeeklySchedule

	_, err := s.AddWindow(Tuesday, TimeWindow{Start: "11:00", End: "09:00"})
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = s.AddWindow(Tuesday, TimeWindow{Start: "10:00", End: "10:00"})
	assert.ErrorIs(t, err, ErrInvalidWindow)

	s, err = s.AddWindow(Tuesday, mustWindow(t, "09:00 - 11:00"))
	require.NoError(t, err)

	_, err = s.AddWindow(Tuesday, mustWindow(t, "10:30 - 12:00"))
	assert.ErrorIs(t, err, ErrInvalidWindow)

	s, err = s.AddWindow(Tuesday, mustWindow(t, "11:00 - 12:00"))
	require.NoError(t, err, "touching windows are allowed")
	assert.Len(t, s.Windows(Tuesday), 2)
}

func TestAddWindowDoesNotMutateReceiver(t *testing.T) {
	var s WeeklySchedule
	s, err := s.AddWindow(Monday, mustWindow(t, "09:00 - 10:00"))
	require.NoError(t, err)

	next, err := s.AddWindow(Monday, mustWindow(t, "10:00 - 11:00"))
	require.NoError(t, err)

	assert.Len(t, s.Windows(Monday), 1)
	assert.Len(t, next.Windows(Monday), 2)
}

func TestUpdateWindow(t *testing.T) {
	s, err := NewWeeklySchedule(DayAvailability{
		Day:     Wednesday,
		Windows: []TimeWindow{mustWindow(t, "09:00 - 11:00"), mustWindow(t, "13:00 - 14:00")},
	})
	require.NoError(t, err)

	t.Run("start after end keeps previous window", func(t *testing.T) {
		_, err := s.UpdateWindow(Wednesday, 0, ptr.Ptr(types.TimeString("12:00")), nil)
		assert.ErrorIs(t, err, ErrInvalidWindow)
		assert.Equal(t, mustWindow(t, "09:00 - 11:00"), s.Windows(Wednesday)[0])
	})

	t.Run("overlap with sibling", func(t *testing.T) {
		_, err := s.UpdateWindow(Wednesday, 0, nil, ptr.Ptr(types.TimeString("13:30")))
		assert.ErrorIs(t, err, ErrInvalidWindow)
	})

	t.Run("out of range", func(t *testing.T) {
		_, err := s.UpdateWindow(Wednesday, 2, nil, nil)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("partial update", func(t *testing.T) {
		next, err := s.UpdateWindow(Wednesday, 1, nil, ptr.Ptr(types.TimeString("16:00")))
		require.NoError(t, err)
		assert.Equal(t, mustWindow(t, "13:00 - 16:00"), next.Windows(Wednesday)[1])
		assert.Equal(t, mustWindow(t, "13:00 - 14:00"), s.Windows(Wednesday)[1])
	})
}

func TestRemoveWindow(t *testing.T) {
	window := mustWindow(t, "09:00 - 11:00")
	s, err := NewWeeklySchedule(DayAvailability{
		Day:     Friday,
		Windows: []TimeWindow{window, mustWindow(t, "14:00 - 15:00")},
	})
	require.NoError(t, err)

	_, err = s.RemoveWindow(Friday, 5)
	assert.ErrorIs(t, err, ErrNotFound)

	removed, err := s.RemoveWindow(Friday, 0)
	require.NoError(t, err)
	assert.Len(t, removed.Windows(Friday), 1)

	readded, err := removed.AddWindow(Friday, window)
	require.NoError(t, err)
	assert.ElementsMatch(t, s.Windows(Friday), readded.Windows(Friday))

	emptied, err := removed.RemoveWindow(Friday, 0)
	require.NoError(t, err)
	assert.NotNil(t, emptied.Windows(Friday))
	assert.Empty(t, emptied.Windows(Friday))
}

func TestReplaceDay(t *testing.T) {
	var s WeeklySchedule

	_, err := s.ReplaceDay(Sunday, []TimeWindow{
		mustWindow(t, "08:00 - 09:00"),
		mustWindow(t, "09:00 - 10:00"),
		mustWindow(t, "10:00 - 11:00"),
		mustWindow(t, "11:00 - 12:00"),
	})
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	_, err = s.ReplaceDay(Sunday, []TimeWindow{mustWindow(t, "08:00 - 10:00"), mustWindow(t, "09:00 - 11:00")})
	assert.ErrorIs(t, err, ErrInvalidWindow)

	next, err := s.ReplaceDay(Sunday, []TimeWindow{mustWindow(t, "08:00 - 10:00")})
	require.NoError(t, err)
	assert.Len(t, next.Windows(Sunday), 1)
	assert.True(t, s.IsEmpty())
	assert.Len(t, next.Days(), 7)
}
