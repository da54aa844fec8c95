package offerings

import (
	"context"

	"github.com/m04kA/SMC-TutorBooking/internal/domain"
)

// OfferingRepository интерфейс репозитория предложений
type OfferingRepository interface {
	Create(ctx context.Context, offering *domain.SubjectOffering) (*domain.SubjectOffering, error)
	GetByID(ctx context.Context, id int64) (*domain.SubjectOffering, error)
	ListByTutor(ctx context.Context, tutorID int64) ([]*domain.SubjectOffering, error)
	UpdateAvailability(ctx context.Context, id int64, schedule domain.WeeklySchedule) error
	UpdatePricing(ctx context.Context, offering *domain.SubjectOffering) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserServiceClient интерфейс клиента для UserService
type UserServiceClient interface {
	IsTutor(ctx context.Context, userID int64) (bool, error)
}

// MetricsCollector интерфейс для бизнес-метрик
type MetricsCollector interface {
	AvailabilityChanged(operation string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
