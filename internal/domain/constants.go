package domain

// Schedule limits
const (
	MaxWindowsPerDay  = 3
	MaxSelectedTopics = 5
)

// Booking limits
const (
	MinDurationHours            = 1
	MaxDurationHours            = 3
	MaxCancellationReasonLength = 500
	MinContactNumberLength      = 10
	MaxContactNumberLength      = 15
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD

	// WindowSeparator разделитель начала и конца окна в "HH:MM - HH:MM"
	WindowSeparator = " - "
)

// DefaultTimezone используется, если в конфиге не задан booking.timezone
const DefaultTimezone = "UTC"

// ActiveStatuses статусы, занимающие слот тьютора
var ActiveStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
}
