package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/m04kA/SMC-TutorBooking/internal/domain"
	offeringRepo "github.com/m04kA/SMC-TutorBooking/internal/infra/storage/offering"
	"github.com/m04kA/SMC-TutorBooking/internal/usecase/validation"
)

// UseCase use case для получения окон, подходящих под длительность занятия
type UseCase struct {
	bookingRepo  BookingRepository
	offeringRepo OfferingRepository
	validate     *validator.Validate
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	offeringRepo OfferingRepository,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		offeringRepo: offeringRepo,
		validate:     validation.New(),
		logger:       logger,
	}
}

// Execute выполняет use case получения подходящих окон
// Окна возвращаются целиком и в порядке расписания, окна, занятые активным
// бронированием, помечаются IsBooked.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: offering=%d, day=%s, duration=%d, mode=%s",
		req.OfferingID, req.Day, req.DurationHours, req.Mode)

	// 1. Валидация входных данных
	if err := uc.validate.Struct(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, validation.Describe(err))
	}

	day, err := domain.ParseWeekDay(req.Day)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	mode, err := domain.ParseTeachingMode(req.Mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// 2. Получаем предложение
	offering, err := uc.offeringRepo.GetByID(ctx, req.OfferingID)
	if err != nil {
		if errors.Is(err, offeringRepo.ErrOfferingNotFound) {
			uc.logger.Warn("GetAvailableSlots: offering id=%d not found", req.OfferingID)
			return nil, ErrOfferingNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get offering id=%d: %v", req.OfferingID, err)
		return nil, fmt.Errorf("%w: failed to get offering: %v", ErrInternal, err)
	}

	// 3. Ставка для выбранного способа обучения
	rate, err := domain.ResolveRate(offering, mode)
	if err != nil {
		uc.logger.Warn("GetAvailableSlots: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrModeUnavailable, err)
	}

	resp := &Response{
		OfferingID:    offering.ID,
		Day:           day,
		DurationHours: req.DurationHours,
		Mode:          mode,
		HourlyRate:    rate,
		Slots:         []domain.AvailableSlot{},
	}

	// 4. Окна, вмещающие длительность
	eligible := domain.FilterEligibleWindows(offering.Availability.Windows(day), req.DurationHours)
	if len(eligible) == 0 {
		uc.logger.Info("GetAvailableSlots: no availability on %s for %dh", day, req.DurationHours)
		return resp, nil
	}

	// 5. Отмечаем занятые окна
	active, err := uc.bookingRepo.GetActiveByTutorDay(ctx, offering.TutorID, day)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get bookings for tutor=%d: %v", offering.TutorID, err)
		return nil, fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
	}

	booked := make([]domain.TimeWindow, 0, len(active))
	for _, b := range active {
		booked = append(booked, b.Window)
	}

	total := domain.ComputeTotal(rate, req.DurationHours)
	for _, w := range eligible {
		resp.Slots = append(resp.Slots, domain.AvailableSlot{
			Day:           day,
			Window:        w,
			DurationHours: req.DurationHours,
			HourlyRate:    rate,
			TotalPrice:    total,
			IsBooked:      domain.ContainsWindow(booked, w),
		})
	}

	uc.logger.Info("GetAvailableSlots: %d eligible windows on %s", len(resp.Slots), day)

	return resp, nil
}
