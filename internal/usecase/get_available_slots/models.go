package get_available_slots

import "github.com/m04kA/SMC-TutorBooking/internal/domain"

// Request модель запроса на получение подходящих окон
type Request struct {
	OfferingID    int64  `validate:"gt=0"`
	Day           string `validate:"required,weekday"`
	DurationHours int    `validate:"min=1,max=3"`
	Mode          string `validate:"required,teaching_mode"`
}

// Response модель ответа со списком подходящих окон
// Пустой Slots означает отсутствие доступности и не является ошибкой.
type Response struct {
	OfferingID    int64
	Day           domain.WeekDay
	DurationHours int
	Mode          domain.TeachingMode
	HourlyRate    float64
	Slots         []domain.AvailableSlot
}
