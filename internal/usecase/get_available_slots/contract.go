package get_available_slots

import (
	"context"

	"github.com/m04kA/SMC-TutorBooking/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetActiveByTutorDay(ctx context.Context, tutorID int64, day domain.WeekDay) ([]*domain.Booking, error)
}

// OfferingRepository интерфейс репозитория предложений тьюторов
type OfferingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.SubjectOffering, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
