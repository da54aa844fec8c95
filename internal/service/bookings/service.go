package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/m04kA/SMC-TutorBooking/internal/domain"
	"github.com/m04kA/SMC-TutorBooking/internal/infra/events"
	bookingRepo "github.com/m04kA/SMC-TutorBooking/internal/infra/storage/booking"
	"github.com/m04kA/SMC-TutorBooking/internal/service/bookings/models"
	"github.com/m04kA/SMC-TutorBooking/pkg/ptr"
)

// Service сервис для работы с бронированиями
type Service struct {
	bookingRepo  BookingRepository
	txManager    TransactionManager
	publisher    EventPublisher
	metrics      MetricsCollector
	location     *time.Location
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	txManager TransactionManager,
	publisher EventPublisher,
	metrics MetricsCollector,
	location *time.Location,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		txManager:    txManager,
		publisher:    publisher,
		metrics:      metrics,
		location:     location,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// GetByID получает бронирование по ID
// Бронирование видят только его участники: ученик и тьютор
func (s *Service) GetByID(ctx context.Context, id int64, userID int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for user=%d", id, userID)

	booking, err := s.getBooking(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if _, ok := booking.RoleOf(userID); !ok {
		s.logger.Warn("GetByID: access denied for user=%d to booking id=%d", userID, id)
		return nil, ErrAccessDenied
	}

	s.logger.Info("GetByID: successfully fetched booking id=%d", id)
	return models.FromDomainBooking(booking, s.timeProvider.Now(), s.location), nil
}

// GetStudentBookings получает историю бронирований ученика
// Опционально фильтрует по статусу
func (s *Service) GetStudentBookings(ctx context.Context, req *models.ListBookingsRequest) (*models.BookingListResponse, error) {
	return s.list(ctx, "GetStudentBookings", req, func(f *domain.BookingsFilter) {
		f.StudentID = &req.UserID
	})
}

// GetTutorBookings получает бронирования тьютора
// Опционально фильтрует по статусу
func (s *Service) GetTutorBookings(ctx context.Context, req *models.ListBookingsRequest) (*models.BookingListResponse, error) {
	return s.list(ctx, "GetTutorBookings", req, func(f *domain.BookingsFilter) {
		f.TutorID = &req.UserID
	})
}

func (s *Service) list(
	ctx context.Context,
	op string,
	req *models.ListBookingsRequest,
	scope func(f *domain.BookingsFilter),
) (*models.BookingListResponse, error) {
	s.logger.Info("%s: fetching bookings for user=%d, status=%s", op, req.UserID, ptr.Deref(req.Status, "any"))

	var filter domain.BookingsFilter
	scope(&filter)

	if req.Status != nil {
		status, err := domain.ParseBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("%s: invalid status=%s for user=%d", op, *req.Status, req.UserID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		filter.Status = &status
	}

	bookings, err := s.bookingRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("%s: repository error for user=%d: %v", op, req.UserID, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}

	s.logger.Info("%s: successfully fetched %d bookings for user=%d", op, len(bookings), req.UserID)
	return models.FromDomainBookingList(bookings, s.timeProvider.Now(), s.location), nil
}

// UpdateStatus переводит бронирование в новый статус
// Подтверждает и завершает только тьютор, отменяет любой участник.
// Завершить можно только прошедшее занятие.
func (s *Service) UpdateStatus(ctx context.Context, bookingID int64, req *models.UpdateStatusRequest) (*models.BookingResponse, error) {
	s.logger.Info("UpdateStatus: updating booking id=%d to status=%s by user=%d",
		bookingID, req.Status, req.UserID)

	// 1. Валидация входных данных
	target, err := domain.ParseBookingStatus(strings.TrimSpace(req.Status))
	if err != nil {
		s.logger.Warn("UpdateStatus: invalid status=%s for booking id=%d", req.Status, bookingID)
		return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
	}

	reason, err := normalizeReason(req.CancellationReason)
	if err != nil {
		s.logger.Warn("UpdateStatus: %v", err)
		return nil, err
	}

	now := s.timeProvider.Now()

	var (
		previous domain.BookingStatus
		updated  *domain.Booking
	)

	// 2. Чтение с блокировкой и условное обновление в одной транзакции
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		booking, err := s.getBooking(txCtx, "UpdateStatus", bookingID)
		if err != nil {
			return err
		}

		role, err := s.authorize(booking, req.UserID, target, now)
		if err != nil {
			return err
		}

		previous = booking.Status

		if target == domain.StatusCancelled {
			err = s.bookingRepo.Cancel(txCtx, bookingID, previous, role, reason, now)
		} else {
			err = s.bookingRepo.UpdateStatus(txCtx, bookingID, previous, target)
		}
		if err != nil {
			if errors.Is(err, bookingRepo.ErrStatusChanged) {
				return fmt.Errorf("%w: booking id=%d changed concurrently", ErrInvalidTransition, bookingID)
			}
			return fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
		}

		updated, err = s.getBooking(txCtx, "UpdateStatus", bookingID)
		return err
	})

	if err != nil {
		if !errors.Is(err, ErrInternal) {
			s.logger.Warn("UpdateStatus: booking id=%d rejected: %v", bookingID, err)
		}
		return nil, err
	}

	s.metrics.BookingTransition(string(previous), string(target))

	// 3. Событие после коммита, ошибка публикации не откатывает переход
	if err := s.publisher.Publish(ctx, events.NewBookingStatusChanged(updated, previous, now)); err != nil {
		s.logger.Warn("UpdateStatus: failed to publish event for booking id=%d: %v", bookingID, err)
	}

	s.logger.Info("UpdateStatus: successfully updated booking id=%d %s -> %s", bookingID, previous, target)
	return models.FromDomainBooking(updated, now, s.location), nil
}

// Вспомогательные методы

// authorize проверяет участника, допустимость перехода и права роли
func (s *Service) authorize(booking *domain.Booking, userID int64, target domain.BookingStatus, now time.Time) (domain.PartyRole, error) {
	role, ok := booking.RoleOf(userID)
	if !ok {
		return "", fmt.Errorf("%w: user=%d is not a party of booking id=%d", ErrAccessDenied, userID, booking.ID)
	}

	if !booking.Status.CanTransitionTo(target) {
		return "", fmt.Errorf("%w: %w: %s -> %s", ErrInvalidTransition, domain.ErrInvalidTransition, booking.Status, target)
	}

	switch target {
	case domain.StatusConfirmed, domain.StatusCompleted:
		if role != domain.RoleTutor {
			return "", fmt.Errorf("%w: only the tutor can set %s", ErrAccessDenied, target)
		}
	}

	if target == domain.StatusCompleted {
		if session := booking.SessionStatusAt(now, s.location); session != domain.SessionEnded {
			return "", fmt.Errorf("%w: session is %s, completion requires ended", ErrInvalidTransition, session)
		}
	}

	return role, nil
}

func (s *Service) getBooking(ctx context.Context, op string, id int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("%s: booking id=%d not found", op, id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("%s: repository error for booking id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return booking, nil
}

// normalizeReason обрезает пробелы, пустая причина превращается в nil
func normalizeReason(reason *string) (*string, error) {
	if reason == nil {
		return nil, nil
	}

	trimmed := strings.TrimSpace(*reason)
	if trimmed == "" {
		return nil, nil
	}

	if utf8.RuneCountInString(trimmed) > domain.MaxCancellationReasonLength {
		return nil, fmt.Errorf("%w: cancellation reason exceeds %d characters", ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	return &trimmed, nil
}
