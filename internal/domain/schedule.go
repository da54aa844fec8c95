package domain

import (
	"fmt"

	"github.com/m04kA/SMC-TutorBooking/pkg/types"
)

// DayAvailability is the ordered list of windows of one day.
type DayAvailability struct {
	Day     WeekDay
	Windows []TimeWindow
}

// WeeklySchedule holds the windows of every day of the week.
//
// The schedule is a value: every mutation returns a new schedule with a freshly
// allocated day list and never touches the receiver, so a reader holding the
// previous value keeps seeing a consistent week.
type WeeklySchedule struct {
	days [7][]TimeWindow
}

// NewWeeklySchedule builds a schedule from day lists, validating each day.
// Days not mentioned are empty.
func NewWeeklySchedule(days ...DayAvailability) (WeeklySchedule, error) {
	var s WeeklySchedule
	for _, d := range days {
		if !d.Day.IsValid() {
			return WeeklySchedule{}, fmt.Errorf("%w: day %d", ErrInvalidInput, int(d.Day))
		}
		if err := ValidateDayWindows(d.Windows); err != nil {
			return WeeklySchedule{}, fmt.Errorf("%s: %w", d.Day, err)
		}
		s.days[d.Day] = cloneWindows(d.Windows)
	}
	return s, nil
}

// Windows returns a copy of the windows of day.
func (s WeeklySchedule) Windows(day WeekDay) []TimeWindow {
	if !day.IsValid() {
		return []TimeWindow{}
	}
	return cloneWindows(s.days[day])
}

// Days returns all seven days in calendar order.
func (s WeeklySchedule) Days() []DayAvailability {
	result := make([]DayAvailability, 0, len(s.days))
	for _, d := range AllWeekDays() {
		result = append(result, DayAvailability{Day: d, Windows: cloneWindows(s.days[d])})
	}
	return result
}

// IsEmpty reports whether no day has a window.
func (s WeeklySchedule) IsEmpty() bool {
	for _, w := range s.days {
		if len(w) > 0 {
			return false
		}
	}
	return true
}

// AddWindow appends window to day.
func (s WeeklySchedule) AddWindow(day WeekDay, window TimeWindow) (WeeklySchedule, error) {
	if !day.IsValid() {
		return s, fmt.Errorf("%w: day %d", ErrInvalidInput, int(day))
	}

	current := s.days[day]
	if len(current) >= MaxWindowsPerDay {
		return s, fmt.Errorf("%w: %s already has %d windows", ErrCapacityExceeded, day, MaxWindowsPerDay)
	}
	if err := window.Validate(); err != nil {
		return s, err
	}
	if err := checkOverlap(current, window, -1); err != nil {
		return s, err
	}

	next := make([]TimeWindow, 0, len(current)+1)
	next = append(next, current...)
	next = append(next, window)

	s.days[day] = next
	return s, nil
}

// RemoveWindow removes the window at index. An emptied day stays as an empty list.
func (s WeeklySchedule) RemoveWindow(day WeekDay, index int) (WeeklySchedule, error) {
	if !day.IsValid() {
		return s, fmt.Errorf("%w: day %d", ErrInvalidInput, int(day))
	}

	current := s.days[day]
	if index < 0 || index >= len(current) {
		return s, fmt.Errorf("%w: %s has no window #%d", ErrNotFound, day, index)
	}

	next := make([]TimeWindow, 0, len(current)-1)
	next = append(next, current[:index]...)
	next = append(next, current[index+1:]...)

	s.days[day] = next
	return s, nil
}

// UpdateWindow replaces the bounds of the window at index. Nil bounds are kept.
func (s WeeklySchedule) UpdateWindow(day WeekDay, index int, start, end *types.TimeString) (WeeklySchedule, error) {
	if !day.IsValid() {
		return s, fmt.Errorf("%w: day %d", ErrInvalidInput, int(day))
	}

	current := s.days[day]
	if index < 0 || index >= len(current) {
		return s, fmt.Errorf("%w: %s has no window #%d", ErrNotFound, day, index)
	}

	updated := current[index]
	if start != nil {
		updated.Start = *start
	}
	if end != nil {
		updated.End = *end
	}
	if err := updated.Validate(); err != nil {
		return s, err
	}
	if err := checkOverlap(current, updated, index); err != nil {
		return s, err
	}

	next := cloneWindows(current)
	next[index] = updated

	s.days[day] = next
	return s, nil
}

// ReplaceDay replaces all windows of day.
func (s WeeklySchedule) ReplaceDay(day WeekDay, windows []TimeWindow) (WeeklySchedule, error) {
	if !day.IsValid() {
		return s, fmt.Errorf("%w: day %d", ErrInvalidInput, int(day))
	}
	if err := ValidateDayWindows(windows); err != nil {
		return s, err
	}

	s.days[day] = cloneWindows(windows)
	return s, nil
}

// ValidateDayWindows checks capacity, ordering and overlap of one day.
func ValidateDayWindows(windows []TimeWindow) error {
	if len(windows) > MaxWindowsPerDay {
		return fmt.Errorf("%w: %d windows, max %d", ErrCapacityExceeded, len(windows), MaxWindowsPerDay)
	}
	for i, w := range windows {
		if err := w.Validate(); err != nil {
			return err
		}
		if err := checkOverlap(windows[:i], w, -1); err != nil {
			return err
		}
	}
	return nil
}

// checkOverlap проверяет пересечение window с окнами дня, кроме skip
func checkOverlap(windows []TimeWindow, window TimeWindow, skip int) error {
	for i, w := range windows {
		if i == skip {
			continue
		}
		if w.Overlaps(window) {
			return fmt.Errorf("%w: %s overlaps %s", ErrInvalidWindow, window, w)
		}
	}
	return nil
}

func cloneWindows(windows []TimeWindow) []TimeWindow {
	result := make([]TimeWindow, len(windows))
	copy(result, windows)
	return result
}
