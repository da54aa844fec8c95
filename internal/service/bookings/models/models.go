package models

import (
	"time"

	"github.com/m04kA/SMC-TutorBooking/internal/domain"
)

// Request модели

// UpdateStatusRequest запрос на смену статуса бронирования
type UpdateStatusRequest struct {
	UserID             int64   `json:"-"`
	Status             string  `json:"status"`
	CancellationReason *string `json:"cancellationReason,omitempty"`
}

// ListBookingsRequest запрос на получение бронирований участника
type ListBookingsRequest struct {
	UserID int64   `json:"-"`
	Status *string `json:"status,omitempty"`
}

// Response модели

// BookingResponse ответ с данными бронирования
// Day - название дня недели, TimeSlot - "HH:MM - HH:MM", Duration - часы.
// SessionStatus (upcoming | ongoing | ended) вычисляется на момент ответа.
type BookingResponse struct {
	ID                int64    `json:"id"`
	StudentID         int64    `json:"studentId"`
	TutorID           int64    `json:"tutorId"`
	SubjectOfferingID int64    `json:"subjectOfferingId"`
	Subject           string   `json:"subject"`
	Topics            []string `json:"topics"`
	Day               string   `json:"day"`
	TimeSlot          string   `json:"timeSlot"`
	Duration          int      `json:"duration"`
	LearningMethod    string   `json:"learningMethod"`
	TotalPrice        float64  `json:"totalPrice"`
	ContactNumber     string   `json:"contactNumber"`
	Status            string   `json:"status"`
	SessionStatus     string   `json:"sessionStatus"`
	SessionDate       string   `json:"sessionDate"`
	SessionStart      string   `json:"sessionStart"`
	SessionEnd        string   `json:"sessionEnd"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledBy        *string `json:"cancelledBy,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"` // ISO 8601 format

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking, now time.Time, loc *time.Location) *BookingResponse {
	if b == nil {
		return nil
	}

	topics := b.TopicIDs
	if topics == nil {
		topics = []string{}
	}

	resp := &BookingResponse{
		ID:                 b.ID,
		StudentID:          b.StudentID,
		TutorID:            b.TutorID,
		SubjectOfferingID:  b.SubjectOfferingID,
		Subject:            b.SubjectName,
		Topics:             topics,
		Day:                b.Day.String(),
		TimeSlot:           b.Window.String(),
		Duration:           b.DurationHours,
		LearningMethod:     string(b.Mode),
		TotalPrice:         b.TotalPrice,
		ContactNumber:      b.ContactNumber,
		Status:             string(b.Status),
		SessionStatus:      string(b.SessionStatusAt(now, loc)),
		SessionDate:        b.SessionDate.Format(domain.DateFormat),
		SessionStart:       b.SessionStart(loc).Format(time.RFC3339),
		SessionEnd:         b.SessionEnd(loc).Format(time.RFC3339),
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}

	if b.CancelledBy != nil {
		by := string(*b.CancelledBy)
		resp.CancelledBy = &by
	}

	// Конвертируем CancelledAt в строку ISO 8601
	if b.CancelledAt != nil {
		cancelledStr := b.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking, now time.Time, loc *time.Location) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, booking := range bookings {
		if bookingResp := FromDomainBooking(booking, now, loc); bookingResp != nil {
			resp.Bookings = append(resp.Bookings, *bookingResp)
		}
	}

	return resp
}
