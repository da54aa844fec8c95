package get_available_slots

import (
	getAvailableSlots "github.com/m04kA/SMC-TutorBooking/internal/usecase/get_available_slots"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	OfferingID     int64           `json:"offeringId"`
	Day            string          `json:"day"`
	Duration       int             `json:"duration"`
	LearningMethod string          `json:"learningMethod"`
	HourlyRate     float64         `json:"hourlyRate"`
	Slots          []AvailableSlot `json:"slots"`
}

// AvailableSlot окно, вмещающее занятие, с ценой
type AvailableSlot struct {
	TimeSlot      string  `json:"timeSlot"`
	WindowMinutes int     `json:"windowMinutes"`
	TotalPrice    float64 `json:"totalPrice"`
	IsBooked      bool    `json:"isBooked"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]AvailableSlot, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = AvailableSlot{
			TimeSlot:      slot.Window.String(),
			WindowMinutes: slot.Window.DurationMinutes(),
			TotalPrice:    slot.TotalPrice,
			IsBooked:      slot.IsBooked,
		}
	}

	return &AvailableSlotsResponse{
		OfferingID:     resp.OfferingID,
		Day:            resp.Day.String(),
		Duration:       resp.DurationHours,
		LearningMethod: string(resp.Mode),
		HourlyRate:     resp.HourlyRate,
		Slots:          slots,
	}
}
