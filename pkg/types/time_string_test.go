package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeStringFromString(t *testing.T) {
	ts, err := NewTimeStringFromString(" 09:30 ")
	require.NoError(t, err)
	assert.Equal(t, TimeString("09:30"), ts)
	assert.Equal(t, 570, ts.Minutes())

	for _, bad := range []string{"", "9:30", "24:01", "25:00", "12:60", "ab:cd", "12-30"} {
		_, err := NewTimeStringFromString(bad)
		assert.ErrorIs(t, err, ErrInvalidTimeString, bad)
	}
}

func TestTimeStringEndOfDay(t *testing.T) {
	end, err := NewTimeStringFromString("24:00")
	require.NoError(t, err)
	assert.Equal(t, 1440, end.Minutes())
	assert.True(t, TimeString("23:59").IsBefore(end))

	fromMinutes, err := NewTimeStringFromMinutes(1440)
	require.NoError(t, err)
	assert.Equal(t, end, fromMinutes)

	var scanned TimeString
	require.NoError(t, scanned.Scan("24:00:00"))
	assert.Equal(t, end, scanned)

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), end.OnDate(date, time.UTC))
}

func TestTimeStringAddMinutes(t *testing.T) {
	next, err := TimeString("10:45").AddMinutes(90)
	require.NoError(t, err)
	assert.Equal(t, TimeString("12:15"), next)

	midnight, err := TimeString("23:30").AddMinutes(30)
	require.NoError(t, err)
	assert.Equal(t, TimeString("24:00"), midnight)

	_, err = TimeString("23:30").AddMinutes(31)
	assert.ErrorIs(t, err, ErrTimeOverflow)
}

func TestTimeStringCompare(t *testing.T) {
	assert.True(t, TimeString("09:00").IsBefore("09:01"))
	assert.False(t, TimeString("09:00").IsBefore("09:00"))
	assert.True(t, TimeString("13:00").IsAfter("12:59"))
}

func TestTimeStringScan(t *testing.T) {
	var ts TimeString
	require.NoError(t, ts.Scan("14:05:00"))
	assert.Equal(t, TimeString("14:05"), ts)

	require.NoError(t, ts.Scan([]byte("08:00")))
	assert.Equal(t, TimeString("08:00"), ts)

	require.NoError(t, ts.Scan(nil))
	assert.True(t, ts.IsZero())

	assert.Error(t, ts.Scan(42))
}

func TestTimeStringOnDate(t *testing.T) {
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	at := TimeString("17:20").OnDate(date, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 2, 17, 20, 0, 0, time.UTC), at)
}
