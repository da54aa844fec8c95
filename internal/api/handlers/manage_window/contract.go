package manage_window

import (
	"context"

	"github.com/m04kA/SMC-TutorBooking/internal/service/offerings/models"
)

type OfferingService interface {
	AddWindow(ctx context.Context, id int64, req *models.AddWindowRequest) (*models.DayWindowsResponse, error)
	UpdateWindow(ctx context.Context, id int64, req *models.UpdateWindowRequest) (*models.DayWindowsResponse, error)
	RemoveWindow(ctx context.Context, id int64, req *models.RemoveWindowRequest) (*models.DayWindowsResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
