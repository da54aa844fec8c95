package create_booking

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/m04kA/SMC-TutorBooking/internal/domain"
	createBooking "github.com/m04kA/SMC-TutorBooking/internal/usecase/create_booking"
)

// OfferingRef ID предложения тьютора, клиенты присылают его строкой или числом
type OfferingRef int64

// UnmarshalJSON принимает "12" и 12
func (r *OfferingRef) UnmarshalJSON(data []byte) error {
	raw := bytes.Trim(data, `"`)
	id, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return fmt.Errorf("subject must be an offering id: %w", err)
	}
	*r = OfferingRef(id)
	return nil
}

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	Subject        OfferingRef `json:"subject"`
	Topics         []string    `json:"topics"`
	Day            string      `json:"day"`
	TimeSlot       string      `json:"timeSlot"` // "09:00 - 11:00"
	Duration       int         `json:"duration"`
	ContactNumber  string      `json:"contactNumber"`
	LearningMethod string      `json:"learningMethod"`
	TotalPrice     *float64    `json:"totalPrice,omitempty"` // игнорируется, цена считается на сервере
}

// BookingResponse HTTP response model
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
	HourlyRate        float64  `json:"hourlyRate"`
	TotalPrice        float64  `json:"totalPrice"`
	ContactNumber     string   `json:"contactNumber"`
	Status            string   `json:"status"`
	SessionStatus     string   `json:"sessionStatus"`
	SessionDate       string   `json:"sessionDate"`
	CreatedAt         string   `json:"createdAt"`
	UpdatedAt         string   `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(studentID int64) *createBooking.Request {
	topics := r.Topics
	if topics == nil {
		topics = []string{}
	}

	return &createBooking.Request{
		StudentID:     studentID,
		OfferingID:    int64(r.Subject),
		TopicIDs:      topics,
		Day:           r.Day,
		TimeSlot:      r.TimeSlot,
		DurationHours: r.Duration,
		Mode:          r.LearningMethod,
		ContactNumber: r.ContactNumber,
		ClientTotal:   r.TotalPrice,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	return &BookingResponse{
		ID:                resp.ID,
		StudentID:         resp.StudentID,
		TutorID:           resp.TutorID,
		SubjectOfferingID: resp.SubjectOfferingID,
		Subject:           resp.SubjectName,
		Topics:            resp.TopicIDs,
		Day:               resp.Day.String(),
		TimeSlot:          resp.Window.String(),
		Duration:          resp.DurationHours,
		LearningMethod:    string(resp.Mode),
		HourlyRate:        resp.HourlyRate,
		TotalPrice:        resp.TotalPrice,
		ContactNumber:     resp.ContactNumber,
		Status:            string(resp.Status),
		SessionStatus:     string(resp.SessionStatus),
		SessionDate:       resp.SessionDate.Format(domain.DateFormat),
		CreatedAt:         resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         resp.UpdatedAt.Format(time.RFC3339),
	}
}
