package create_booking

import (
	"time"

	"github.com/m04kA/SMC-TutorBooking/internal/domain"
)

// Request модель запроса на создание бронирования
// Day, TimeSlot и Mode приходят строками и разбираются в use case.
// ContactNumber проверяется отдельным шагом, ClientTotal только логируется.
// Повторы в TopicIDs не ошибка, они схлопываются при создании.
type Request struct {
	StudentID     int64    `validate:"gt=0"`
	OfferingID    int64    `validate:"gt=0"`
	TopicIDs      []string `validate:"max=5,dive,required"`
	Day           string   `validate:"required,weekday"`
	TimeSlot      string   `validate:"required,time_window"`
	DurationHours int      `validate:"min=1,max=3"`
	Mode          string   `validate:"required,teaching_mode"`
	ContactNumber string
	ClientTotal   *float64
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID                int64
	StudentID         int64
	TutorID           int64
	SubjectOfferingID int64
	SubjectName       string
	TopicIDs          []string
	Day               domain.WeekDay
	Window            domain.TimeWindow
	DurationHours     int
	Mode              domain.TeachingMode
	HourlyRate        float64
	TotalPrice        float64
	ContactNumber     string
	Status            domain.BookingStatus
	SessionDate       time.Time
	SessionStatus     domain.SessionStatus
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func toResponse(b *domain.Booking, hourlyRate float64, session domain.SessionStatus) *Response {
	return &Response{
		ID:                b.ID,
		StudentID:         b.StudentID,
		TutorID:           b.TutorID,
		SubjectOfferingID: b.SubjectOfferingID,
		SubjectName:       b.SubjectName,
		TopicIDs:          b.TopicIDs,
		Day:               b.Day,
		Window:            b.Window,
		DurationHours:     b.DurationHours,
		Mode:              b.Mode,
		HourlyRate:        hourlyRate,
		TotalPrice:        b.TotalPrice,
		ContactNumber:     b.ContactNumber,
		Status:            b.Status,
		SessionDate:       b.SessionDate,
		SessionStatus:     session,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}
}
