package domain

import (
	"fmt"
	"time"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

// validTransitions defines the booking state machine
var validTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
}

// ParseBookingStatus converts a string to a BookingStatus
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("%w: unknown booking status %q", ErrInvalidInput, s)
	}
	return status, nil
}

// IsValid returns true if the status is a known booking status
func (s BookingStatus) IsValid() bool {
	_, ok := validTransitions[s]
	return ok
}

// CanTransitionTo returns true if moving from s to target is allowed
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible
func (s BookingStatus) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// IsActive returns true if a booking in this status holds the tutor's slot
func (s BookingStatus) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

func (s BookingStatus) String() string {
	return string(s)
}

// PartyRole is the side of a booking a user acts on
type PartyRole string

const (
	RoleStudent PartyRole = "student"
	RoleTutor   PartyRole = "tutor"
)

// SessionStatus is derived from the clock and never stored
type SessionStatus string

const (
	SessionUpcoming SessionStatus = "upcoming"
	SessionOngoing  SessionStatus = "ongoing"
	SessionEnded    SessionStatus = "ended"
)

// Booking represents a student's booked session with a tutor
type Booking struct {
	ID                int64
	StudentID         int64
	TutorID           int64
	SubjectOfferingID int64
	SubjectName       string
	TopicIDs          []string
	Day               WeekDay
	Window            TimeWindow
	DurationHours     int
	Mode              TeachingMode
	TotalPrice        float64
	ContactNumber     string
	Status            BookingStatus

	CancellationReason *string
	CancelledBy        *PartyRole
	CancelledAt        *time.Time

	// SessionDate календарная дата занятия, значимы только год, месяц и день
	SessionDate time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RoleOf returns the role userID plays in the booking
func (b *Booking) RoleOf(userID int64) (PartyRole, bool) {
	switch userID {
	case b.TutorID:
		return RoleTutor, true
	case b.StudentID:
		return RoleStudent, true
	default:
		return "", false
	}
}

// SessionStart returns the moment the session begins
func (b *Booking) SessionStart(loc *time.Location) time.Time {
	return b.Window.Start.OnDate(b.SessionDate, loc)
}

// SessionEnd returns the moment the session ends
func (b *Booking) SessionEnd(loc *time.Location) time.Time {
	return b.SessionStart(loc).Add(time.Duration(b.DurationHours) * time.Hour)
}

// SessionStatusAt derives the session status: [start, start+duration) is ongoing
func (b *Booking) SessionStatusAt(now time.Time, loc *time.Location) SessionStatus {
	start := b.SessionStart(loc)
	switch {
	case now.Before(start):
		return SessionUpcoming
	case now.Before(b.SessionEnd(loc)):
		return SessionOngoing
	default:
		return SessionEnded
	}
}

// SessionDateFor resolves a weekday to the first date on or after createdAt.
// If that date is createdAt's own day and the window does not start later than
// createdAt, the session falls on the following week.
func SessionDateFor(createdAt time.Time, day WeekDay, window TimeWindow, loc *time.Location) time.Time {
	local := createdAt.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	offset := (int(day.Weekday()) - int(local.Weekday()) + 7) % 7
	date := today.AddDate(0, 0, offset)

	if offset == 0 && !window.Start.OnDate(date, loc).After(local) {
		date = date.AddDate(0, 0, 7)
	}
	return date
}

// BookingsFilter фильтр для выборки бронирований участника
type BookingsFilter struct {
	StudentID *int64
	TutorID   *int64
	Status    *BookingStatus
}

// SlotKey identifies a tutor's weekly slot. At most one active booking per key.
type SlotKey struct {
	TutorID int64
	Day     WeekDay
	Window  TimeWindow
}

// Slot returns the slot the booking occupies
func (b *Booking) Slot() SlotKey {
	return SlotKey{TutorID: b.TutorID, Day: b.Day, Window: b.Window}
}
