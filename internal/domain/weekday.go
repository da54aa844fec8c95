package domain

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// WeekDay is a day of the week, Monday first.
type WeekDay int

const (
	Monday WeekDay = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekDayNames = [...]string{
	"Monday",
	"Tuesday",
	"Wednesday",
	"Thursday",
	"Friday",
	"Saturday",
	"Sunday",
}

// AllWeekDays returns the days in calendar order.
func AllWeekDays() []WeekDay {
	return []WeekDay{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}
}

// ParseWeekDay parses an English day name, case-insensitive.
func ParseWeekDay(s string) (WeekDay, error) {
	name := strings.TrimSpace(s)
	for i, n := range weekDayNames {
		if strings.EqualFold(n, name) {
			return WeekDay(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown day %q", ErrInvalidInput, s)
}

// WeekDayOf converts time.Weekday (Sunday first) to WeekDay.
func WeekDayOf(wd time.Weekday) WeekDay {
	return WeekDay((int(wd) + 6) % 7)
}

// IsValid reports whether d is one of the seven days.
func (d WeekDay) IsValid() bool {
	return d >= Monday && d <= Sunday
}

// Weekday converts d to time.Weekday.
func (d WeekDay) Weekday() time.Weekday {
	return time.Weekday((int(d) + 1) % 7)
}

func (d WeekDay) String() string {
	if !d.IsValid() {
		return fmt.Sprintf("WeekDay(%d)", int(d))
	}
	return weekDayNames[d]
}

// MarshalText implements encoding.TextMarshaler
func (d WeekDay) MarshalText() ([]byte, error) {
	if !d.IsValid() {
		return nil, fmt.Errorf("%w: day %d", ErrInvalidInput, int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *WeekDay) UnmarshalText(text []byte) error {
	parsed, err := ParseWeekDay(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer, день хранится в БД названием
func (d WeekDay) Value() (driver.Value, error) {
	if !d.IsValid() {
		return nil, fmt.Errorf("%w: day %d", ErrInvalidInput, int(d))
	}
	return d.String(), nil
}

// Scan implements sql.Scanner
func (d *WeekDay) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		return d.UnmarshalText([]byte(v))
	case []byte:
		return d.UnmarshalText(v)
	default:
		return fmt.Errorf("cannot scan %T into WeekDay", src)
	}
}
