package replace_availability

import (
	"context"

	"github.com/m04kA/SMC-TutorBooking/internal/service/offerings/models"
)

type OfferingService interface {
	ReplaceAvailability(ctx context.Context, id int64, req *models.ReplaceAvailabilityRequest) (*models.OfferingResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
