package offerings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-TutorBooking/internal/domain"
	offeringRepo "github.com/m04kA/SMC-TutorBooking/internal/infra/storage/offering"
	"github.com/m04kA/SMC-TutorBooking/internal/service/offerings/models"
	"github.com/m04kA/SMC-TutorBooking/pkg/types"
)

// Операции изменения расписания для метрики availability_changes_total
const (
	opReplaceDays  = "replace_days"
	opAddWindow    = "add_window"
	opUpdateWindow = "update_window"
	opRemoveWindow = "remove_window"
)

// Service сервис для работы с предложениями тьюторов и их расписанием
type Service struct {
	offeringRepo OfferingRepository
	txManager    TransactionManager
	userClient   UserServiceClient
	metrics      MetricsCollector
	logger       Logger
}

// NewService создает новый экземпляр сервиса предложений
// userClient может быть nil, тогда роль тьютора не проверяется
func NewService(
	offeringRepo OfferingRepository,
	txManager TransactionManager,
	userClient UserServiceClient,
	metrics MetricsCollector,
	logger Logger,
) *Service {
	return &Service{
		offeringRepo: offeringRepo,
		txManager:    txManager,
		userClient:   userClient,
		metrics:      metrics,
		logger:       logger,
	}
}

// GetByID получает предложение по ID
// Публичный метод - доступен всем
func (s *Service) GetByID(ctx context.Context, id int64) (*models.OfferingResponse, error) {
	s.logger.Info("GetByID: fetching offering id=%d", id)

	offering, err := s.getOffering(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("GetByID: successfully fetched offering id=%d", id)
	return models.FromDomainOffering(offering), nil
}

// ListByTutor получает все предложения тьютора
// Публичный метод - доступен всем
func (s *Service) ListByTutor(ctx context.Context, tutorID int64) (*models.OfferingListResponse, error) {
	s.logger.Info("ListByTutor: fetching offerings for tutor=%d", tutorID)

	offerings, err := s.offeringRepo.ListByTutor(ctx, tutorID)
	if err != nil {
		s.logger.Error("ListByTutor: repository error for tutor=%d: %v", tutorID, err)
		return nil, fmt.Errorf("%w: ListByTutor - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ListByTutor: successfully fetched %d offerings for tutor=%d", len(offerings), tutorID)
	return models.FromDomainOfferingList(offerings), nil
}

// Create создает предложение от имени тьютора
// Если подключен UserService, пользователь должен иметь роль тьютора
func (s *Service) Create(ctx context.Context, req *models.CreateOfferingRequest) (*models.OfferingResponse, error) {
	s.logger.Info("Create: creating offering subject=%d by user=%d", req.SubjectID, req.UserID)

	// 1. Собираем доменную модель и валидируем
	offering, err := buildOffering(req)
	if err != nil {
		s.logger.Warn("Create: validation failed: %v", err)
		return nil, mapDomainError(err)
	}

	// 2. Проверяем роль пользователя
	if s.userClient != nil {
		isTutor, err := s.userClient.IsTutor(ctx, req.UserID)
		if err != nil {
			s.logger.Error("Create: failed to verify role of user=%d: %v", req.UserID, err)
			return nil, fmt.Errorf("%w: failed to verify user role: %v", ErrInternal, err)
		}
		if !isTutor {
			s.logger.Warn("Create: user=%d is not a tutor", req.UserID)
			return nil, ErrAccessDenied
		}
	}

	// 3. Создаем предложение, уникальность (тьютор, предмет) проверяет хранилище
	created, err := s.offeringRepo.Create(ctx, offering)
	if err != nil {
		if errors.Is(err, offeringRepo.ErrDuplicateOffering) {
			s.logger.Warn("Create: offering already exists for tutor=%d, subject=%d", req.UserID, req.SubjectID)
			return nil, ErrOfferingAlreadyExists
		}
		s.logger.Error("Create: repository error: %v", err)
		return nil, fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Create: successfully created offering id=%d", created.ID)
	return models.FromDomainOffering(created), nil
}

// UpdateRates меняет темы, ставки способов обучения и legacy ставки
// Доступно только тьютору предложения
func (s *Service) UpdateRates(ctx context.Context, id int64, req *models.UpdateRatesRequest) (*models.OfferingResponse, error) {
	s.logger.Info("UpdateRates: updating offering id=%d by user=%d", id, req.UserID)

	// 1. Валидация входных данных
	if req.SelectedTopics == nil && req.ModeRates == nil && req.LegacyRates == nil {
		s.logger.Warn("UpdateRates: empty update for offering id=%d", id)
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}

	var rates []domain.ModeRate
	if req.ModeRates != nil {
		parsed, err := models.ToDomainModeRates(req.ModeRates)
		if err != nil {
			s.logger.Warn("UpdateRates: %v", err)
			return nil, mapDomainError(err)
		}
		rates = parsed
	}

	var updated *domain.SubjectOffering

	// 2. Чтение с блокировкой и обновление в одной транзакции
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		offering, err := s.getOwned(txCtx, "UpdateRates", id, req.UserID)
		if err != nil {
			return err
		}

		if req.SelectedTopics != nil {
			offering.SelectedTopics = models.ToDomainTopics(req.SelectedTopics)
		}
		if req.ModeRates != nil {
			offering.ModeRates = rates
		}
		if req.LegacyRates != nil {
			offering.LegacyRates = models.ToDomainLegacyRates(req.LegacyRates)
		}

		if err := offering.Validate(); err != nil {
			return mapDomainError(err)
		}

		if err := s.offeringRepo.UpdatePricing(txCtx, offering); err != nil {
			return s.mapRepoError("UpdateRates", id, err)
		}

		updated, err = s.getOffering(txCtx, "UpdateRates", id)
		return err
	})

	if err != nil {
		s.logFailure("UpdateRates", id, err)
		return nil, err
	}

	s.logger.Info("UpdateRates: successfully updated offering id=%d", id)
	return models.FromDomainOffering(updated), nil
}

// ReplaceAvailability заменяет окна перечисленных дней
// Каждый день проверяется целиком: не больше 3 окон, без пересечений
func (s *Service) ReplaceAvailability(ctx context.Context, id int64, req *models.ReplaceAvailabilityRequest) (*models.OfferingResponse, error) {
	s.logger.Info("ReplaceAvailability: replacing %d days of offering id=%d by user=%d",
		len(req.Availability), id, req.UserID)

	// 1. Разбираем расписание
	if len(req.Availability) == 0 {
		s.logger.Warn("ReplaceAvailability: empty availability for offering id=%d", id)
		return nil, fmt.Errorf("%w: availability is required", ErrInvalidInput)
	}
	days, err := req.Availability.ToDomainDays()
	if err != nil {
		s.logger.Warn("ReplaceAvailability: %v", err)
		return nil, mapDomainError(err)
	}

	// 2. Применяем изменения к копии расписания
	updated, err := s.mutateSchedule(ctx, opReplaceDays, id, req.UserID, func(schedule domain.WeeklySchedule) (domain.WeeklySchedule, error) {
		for _, d := range days {
			next, err := schedule.ReplaceDay(d.Day, d.Windows)
			if err != nil {
				return schedule, fmt.Errorf("%s: %w", d.Day, err)
			}
			schedule = next
		}
		return schedule, nil
	})
	if err != nil {
		return nil, err
	}

	return models.FromDomainOffering(updated), nil
}

// AddWindow добавляет окно в день
func (s *Service) AddWindow(ctx context.Context, id int64, req *models.AddWindowRequest) (*models.DayWindowsResponse, error) {
	s.logger.Info("AddWindow: adding %s to %s of offering id=%d by user=%d", req.TimeSlot, req.Day, id, req.UserID)

	// 1. Валидация входных данных
	day, err := domain.ParseWeekDay(req.Day)
	if err != nil {
		s.logger.Warn("AddWindow: %v", err)
		return nil, mapDomainError(err)
	}
	window, err := domain.ParseTimeWindow(strings.TrimSpace(req.TimeSlot))
	if err != nil {
		s.logger.Warn("AddWindow: %v", err)
		return nil, mapDomainError(err)
	}

	// 2. Добавляем окно
	updated, err := s.mutateSchedule(ctx, opAddWindow, id, req.UserID, func(schedule domain.WeeklySchedule) (domain.WeeklySchedule, error) {
		return schedule.AddWindow(day, window)
	})
	if err != nil {
		return nil, err
	}

	return dayResponse(updated, day), nil
}

// UpdateWindow меняет границы окна по индексу, не указанные границы сохраняются
func (s *Service) UpdateWindow(ctx context.Context, id int64, req *models.UpdateWindowRequest) (*models.DayWindowsResponse, error) {
	s.logger.Info("UpdateWindow: updating window #%d of %s, offering id=%d by user=%d", req.Index, req.Day, id, req.UserID)

	// 1. Валидация входных данных
	day, err := domain.ParseWeekDay(req.Day)
	if err != nil {
		s.logger.Warn("UpdateWindow: %v", err)
		return nil, mapDomainError(err)
	}
	if req.Start == nil && req.End == nil {
		s.logger.Warn("UpdateWindow: neither start nor end given for offering id=%d", id)
		return nil, fmt.Errorf("%w: start or end is required", ErrInvalidInput)
	}
	start, err := parseBound(req.Start)
	if err != nil {
		return nil, fmt.Errorf("%w: start: %v", ErrInvalidInput, err)
	}
	end, err := parseBound(req.End)
	if err != nil {
		return nil, fmt.Errorf("%w: end: %v", ErrInvalidInput, err)
	}

	// 2. Меняем окно
	updated, err := s.mutateSchedule(ctx, opUpdateWindow, id, req.UserID, func(schedule domain.WeeklySchedule) (domain.WeeklySchedule, error) {
		return schedule.UpdateWindow(day, req.Index, start, end)
	})
	if err != nil {
		return nil, err
	}

	return dayResponse(updated, day), nil
}

// RemoveWindow удаляет окно по индексу, опустевший день остается пустым списком
func (s *Service) RemoveWindow(ctx context.Context, id int64, req *models.RemoveWindowRequest) (*models.DayWindowsResponse, error) {
	s.logger.Info("RemoveWindow: removing window #%d of %s, offering id=%d by user=%d", req.Index, req.Day, id, req.UserID)

	day, err := domain.ParseWeekDay(req.Day)
	if err != nil {
		s.logger.Warn("RemoveWindow: %v", err)
		return nil, mapDomainError(err)
	}

	updated, err := s.mutateSchedule(ctx, opRemoveWindow, id, req.UserID, func(schedule domain.WeeklySchedule) (domain.WeeklySchedule, error) {
		return schedule.RemoveWindow(day, req.Index)
	})
	if err != nil {
		return nil, err
	}

	return dayResponse(updated, day), nil
}

// Вспомогательные методы

// mutateSchedule читает предложение с блокировкой, применяет mutate к копии расписания и сохраняет результат
func (s *Service) mutateSchedule(
	ctx context.Context,
	op string,
	id int64,
	userID int64,
	mutate func(schedule domain.WeeklySchedule) (domain.WeeklySchedule, error),
) (*domain.SubjectOffering, error) {
	var updated *domain.SubjectOffering

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		offering, err := s.getOwned(txCtx, op, id, userID)
		if err != nil {
			return err
		}

		next, err := mutate(offering.Availability)
		if err != nil {
			return mapDomainError(err)
		}

		if err := s.offeringRepo.UpdateAvailability(txCtx, id, next); err != nil {
			return s.mapRepoError(op, id, err)
		}

		updated, err = s.getOffering(txCtx, op, id)
		return err
	})

	if err != nil {
		s.logFailure(op, id, err)
		return nil, err
	}

	s.metrics.AvailabilityChanged(op)
	s.logger.Info("%s: successfully updated availability of offering id=%d", op, id)
	return updated, nil
}

// getOwned получает предложение и проверяет, что userID - его тьютор
func (s *Service) getOwned(ctx context.Context, op string, id int64, userID int64) (*domain.SubjectOffering, error) {
	offering, err := s.getOffering(ctx, op, id)
	if err != nil {
		return nil, err
	}
	if !offering.IsOwnedBy(userID) {
		return nil, fmt.Errorf("%w: user=%d is not the tutor of offering id=%d", ErrAccessDenied, userID, id)
	}
	return offering, nil
}

func (s *Service) getOffering(ctx context.Context, op string, id int64) (*domain.SubjectOffering, error) {
	offering, err := s.offeringRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(op, id, err)
	}
	return offering, nil
}

func (s *Service) mapRepoError(op string, id int64, err error) error {
	if errors.Is(err, offeringRepo.ErrOfferingNotFound) {
		s.logger.Warn("%s: offering id=%d not found", op, id)
		return ErrOfferingNotFound
	}
	s.logger.Error("%s: repository error for offering id=%d: %v", op, id, err)
	return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
}

func (s *Service) logFailure(op string, id int64, err error) {
	if errors.Is(err, ErrInternal) {
		return
	}
	s.logger.Warn("%s: offering id=%d rejected: %v", op, id, err)
}

// mapDomainError переводит ошибки доменной модели в ошибки сервиса
func mapDomainError(err error) error {
	switch {
	case errors.Is(err, domain.ErrCapacityExceeded):
		return fmt.Errorf("%w: %v", ErrCapacityExceeded, err)
	case errors.Is(err, domain.ErrInvalidWindow):
		return fmt.Errorf("%w: %v", ErrInvalidWindow, err)
	case errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrWindowNotFound, err)
	default:
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
}

func buildOffering(req *models.CreateOfferingRequest) (*domain.SubjectOffering, error) {
	rates, err := models.ToDomainModeRates(req.ModeRates)
	if err != nil {
		return nil, err
	}

	days, err := req.Availability.ToDomainDays()
	if err != nil {
		return nil, err
	}
	schedule, err := domain.NewWeeklySchedule(days...)
	if err != nil {
		return nil, err
	}

	offering := &domain.SubjectOffering{
		TutorID:        req.UserID,
		SubjectID:      req.SubjectID,
		SubjectName:    strings.TrimSpace(req.SubjectName),
		SelectedTopics: models.ToDomainTopics(req.SelectedTopics),
		ModeRates:      rates,
		Availability:   schedule,
		LegacyRates:    models.ToDomainLegacyRates(req.LegacyRates),
	}
	if err := offering.Validate(); err != nil {
		return nil, err
	}
	return offering, nil
}

func parseBound(s *string) (*types.TimeString, error) {
	if s == nil {
		return nil, nil
	}
	t, err := types.NewTimeStringFromString(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func dayResponse(o *domain.SubjectOffering, day domain.WeekDay) *models.DayWindowsResponse {
	return &models.DayWindowsResponse{
		OfferingID: o.ID,
		Day:        day.String(),
		Windows:    models.FromDomainWindows(o.Availability.Windows(day)),
	}
}
