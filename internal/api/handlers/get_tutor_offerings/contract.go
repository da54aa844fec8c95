package get_tutor_offerings

import (
	"context"

	"github.com/m04kA/SMC-TutorBooking/internal/service/offerings/models"
)

type OfferingService interface {
	ListByTutor(ctx context.Context, tutorID int64) (*models.OfferingListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
