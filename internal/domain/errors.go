package domain

import "errors"

// Shared error taxonomy. Use cases and services wrap these with their own
// sentinels so handlers can map them to HTTP statuses with errors.Is.
var (
	ErrInvalidInput      = errors.New("domain: invalid input")
	ErrNotFound          = errors.New("domain: not found")
	ErrCapacityExceeded  = errors.New("domain: day window capacity exceeded")
	ErrInvalidWindow     = errors.New("domain: invalid time window")
	ErrModeUnavailable   = errors.New("domain: teaching mode unavailable")
	ErrNoAvailability    = errors.New("domain: no availability for requested duration")
	ErrInvalidSlot       = errors.New("domain: requested slot is not eligible")
	ErrInvalidContact    = errors.New("domain: invalid contact number")
	ErrInvalidTopic      = errors.New("domain: topic is not offered")
	ErrSlotConflict      = errors.New("domain: slot already booked")
	ErrInvalidTransition = errors.New("domain: invalid status transition")
	ErrAccessDenied      = errors.New("domain: access denied")
)
