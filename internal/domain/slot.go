package domain

import (
	"fmt"
	"strings"

	"github.com/m04kA/SMC-TutorBooking/pkg/types"
)

// TimeWindow is a bookable time-of-day range of a single day.
type TimeWindow struct {
	Start types.TimeString
	End   types.TimeString
}

// NewTimeWindow builds a window and checks that start < end.
func NewTimeWindow(start, end types.TimeString) (TimeWindow, error) {
	w := TimeWindow{Start: start, End: end}
	if err := w.Validate(); err != nil {
		return TimeWindow{}, err
	}
	return w, nil
}

// ParseTimeWindow parses the wire form "HH:MM - HH:MM".
// Only the format is checked here, ordering is checked by Validate.
func ParseTimeWindow(s string) (TimeWindow, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return TimeWindow{}, fmt.Errorf("%w: time window %q, expected HH:MM - HH:MM", ErrInvalidInput, s)
	}

	start, err := types.NewTimeStringFromString(parts[0])
	if err != nil {
		return TimeWindow{}, fmt.Errorf("%w: time window start: %v", ErrInvalidInput, err)
	}
	end, err := types.NewTimeStringFromString(parts[1])
	if err != nil {
		return TimeWindow{}, fmt.Errorf("%w: time window end: %v", ErrInvalidInput, err)
	}

	return TimeWindow{Start: start, End: end}, nil
}

// Validate checks that both bounds are valid and start < end.
func (w TimeWindow) Validate() error {
	if err := w.Start.Validate(); err != nil {
		return fmt.Errorf("%w: start: %v", ErrInvalidWindow, err)
	}
	if err := w.End.Validate(); err != nil {
		return fmt.Errorf("%w: end: %v", ErrInvalidWindow, err)
	}
	if !w.Start.IsBefore(w.End) {
		return fmt.Errorf("%w: start %s must be before end %s", ErrInvalidWindow, w.Start, w.End)
	}
	return nil
}

// DurationMinutes returns end - start in minutes.
func (w TimeWindow) DurationMinutes() int {
	return w.End.Minutes() - w.Start.Minutes()
}

// DurationHours returns the window length in hours, fractional.
func (w TimeWindow) DurationHours() float64 {
	return float64(w.DurationMinutes()) / 60
}

// CanHost reports whether the window is long enough for a session of durationHours.
func (w TimeWindow) CanHost(durationHours int) bool {
	return w.DurationMinutes() >= durationHours*60
}

// Overlaps reports whether two windows share any time. Touching windows do not overlap.
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	return w.Start.Minutes() < other.End.Minutes() && other.Start.Minutes() < w.End.Minutes()
}

// Equal compares start and end exactly.
func (w TimeWindow) Equal(other TimeWindow) bool {
	return w.Start == other.Start && w.End == other.End
}

func (w TimeWindow) String() string {
	return w.Start.String() + WindowSeparator + w.End.String()
}

// MarshalText implements encoding.TextMarshaler
func (w TimeWindow) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (w *TimeWindow) UnmarshalText(text []byte) error {
	parsed, err := ParseTimeWindow(string(text))
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

// AvailableSlot is an eligible window of a day with its price preview.
type AvailableSlot struct {
	Day           WeekDay
	Window        TimeWindow
	DurationHours int
	HourlyRate    float64
	TotalPrice    float64
	IsBooked      bool // слот уже занят активным бронированием
}
