package create_booking

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/m04kA/SMC-TutorBooking/internal/domain"
	"github.com/m04kA/SMC-TutorBooking/internal/infra/events"
	bookingRepo "github.com/m04kA/SMC-TutorBooking/internal/infra/storage/booking"
	offeringRepo "github.com/m04kA/SMC-TutorBooking/internal/infra/storage/offering"
	"github.com/m04kA/SMC-TutorBooking/internal/usecase/validation"
)

var contactNumberPattern = regexp.MustCompile(`^[0-9]{10,15}$`)

// Причины отказа для метрики bookings_rejected_total
const (
	reasonInvalidInput    = "invalid_input"
	reasonNotFound        = "not_found"
	reasonModeUnavailable = "mode_unavailable"
	reasonNoAvailability  = "no_availability"
	reasonInvalidSlot     = "invalid_slot"
	reasonInvalidContact  = "invalid_contact"
	reasonInvalidTopic    = "invalid_topic"
	reasonSlotConflict    = "slot_conflict"
)

// UseCase use case для создания бронирования
type UseCase struct {
	bookingRepo  BookingRepository
	offeringRepo OfferingRepository
	txManager    TransactionManager
	publisher    EventPublisher
	metrics      MetricsCollector
	validate     *validator.Validate
	location     *time.Location
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	offeringRepo OfferingRepository,
	txManager TransactionManager,
	publisher EventPublisher,
	metrics MetricsCollector,
	location *time.Location,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		offeringRepo: offeringRepo,
		txManager:    txManager,
		publisher:    publisher,
		metrics:      metrics,
		validate:     validation.New(),
		location:     location,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case создания бронирования
// Проверки идут строго по порядку, первая неудачная определяет ошибку.
// Проверка занятости слота и вставка выполняются в одной сериализуемой транзакции.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: student=%d, offering=%d, day=%s, slot=%s, duration=%d, mode=%s",
		req.StudentID, req.OfferingID, req.Day, req.TimeSlot, req.DurationHours, req.Mode)

	// 1. Структурная валидация
	if err := uc.validate.Struct(req); err != nil {
		return nil, uc.reject(reasonInvalidInput, fmt.Errorf("%w: %s", ErrInvalidInput, validation.Describe(err)))
	}

	day, err := domain.ParseWeekDay(req.Day)
	if err != nil {
		return nil, uc.reject(reasonInvalidInput, fmt.Errorf("%w: %v", ErrInvalidInput, err))
	}
	window, err := domain.ParseTimeWindow(req.TimeSlot)
	if err != nil {
		return nil, uc.reject(reasonInvalidInput, fmt.Errorf("%w: %v", ErrInvalidInput, err))
	}
	mode, err := domain.ParseTeachingMode(req.Mode)
	if err != nil {
		return nil, uc.reject(reasonInvalidInput, fmt.Errorf("%w: %v", ErrInvalidInput, err))
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Предложение должно существовать
	offering, err := uc.offeringRepo.GetByID(ctx, req.OfferingID)
	if err != nil {
		if errors.Is(err, offeringRepo.ErrOfferingNotFound) {
			return nil, uc.reject(reasonNotFound, fmt.Errorf("%w: id=%d", ErrOfferingNotFound, req.OfferingID))
		}
		uc.logger.Error("CreateBooking: failed to get offering id=%d: %v", req.OfferingID, err)
		return nil, fmt.Errorf("%w: failed to get offering: %v", ErrInternal, err)
	}

	if offering.IsOwnedBy(req.StudentID) {
		return nil, uc.reject(reasonInvalidInput, fmt.Errorf("%w: tutor cannot book own offering", ErrInvalidInput))
	}

	// 4-8. Быстрый отказ по прочитанному предложению, оно может прийти из кэша
	if _, reason, err := uc.checkRequest(offering, req, day, window, mode); err != nil {
		return nil, uc.reject(reason, err)
	}

	booking := &domain.Booking{
		StudentID:         req.StudentID,
		TutorID:           offering.TutorID,
		SubjectOfferingID: offering.ID,
		TopicIDs:          normalizeTopics(req.TopicIDs),
		Day:               day,
		Window:            window,
		DurationHours:     req.DurationHours,
		Mode:              mode,
		ContactNumber:     req.ContactNumber,
		Status:            domain.StatusPending,
		SessionDate:       domain.SessionDateFor(now, day, window, uc.location),
	}

	var (
		result       *domain.Booking
		rate         float64
		rejectReason string
	)

	// 9. Проверка занятости и создание в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		rejectReason = ""

		// 9.1. Перечитываем предложение с блокировкой и повторяем шаги 4-8:
		// решение и цена берутся только из заблокированной строки
		locked, err := uc.offeringRepo.GetByID(txCtx, offering.ID)
		if err != nil {
			if errors.Is(err, offeringRepo.ErrOfferingNotFound) {
				rejectReason = reasonNotFound
				return fmt.Errorf("%w: id=%d", ErrOfferingNotFound, offering.ID)
			}
			return fmt.Errorf("%w: failed to lock offering: %v", ErrInternal, err)
		}

		var reason string
		rate, reason, err = uc.checkRequest(locked, req, day, window, mode)
		if err != nil {
			rejectReason = reason
			return err
		}

		booking.SubjectName = locked.SubjectName
		booking.TotalPrice = domain.ComputeTotal(rate, req.DurationHours)

		// 9.2. Активные бронирования слота (FOR UPDATE)
		active, err := uc.bookingRepo.GetActiveBySlot(txCtx, booking.Slot())
		if err != nil {
			return fmt.Errorf("%w: failed to get slot bookings: %v", ErrInternal, err)
		}
		if len(active) > 0 {
			return fmt.Errorf("%w: booking id=%d holds %s %s", ErrSlotConflict, active[0].ID, day, window)
		}

		// 9.3. Создаем бронирование, уникальный индекс остается последней защитой
		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrSlotConflict) {
				return fmt.Errorf("%w: %v", ErrSlotConflict, err)
			}
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		switch {
		case rejectReason != "":
			return nil, uc.reject(rejectReason, err)
		case errors.Is(err, ErrSlotConflict), bookingRepo.IsConflict(err):
			uc.logger.Warn("CreateBooking: slot conflict tutor=%d %s %s: %v", booking.TutorID, day, window, err)
			uc.metrics.BookingRejected(reasonSlotConflict)
			if !errors.Is(err, ErrSlotConflict) {
				err = fmt.Errorf("%w: %v", ErrSlotConflict, err)
			}
			return nil, err
		}
		uc.logger.Error("CreateBooking: transaction failed: %v", err)
		if errors.Is(err, ErrInternal) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	if req.ClientTotal != nil && math.Abs(*req.ClientTotal-result.TotalPrice) > 0.005 {
		uc.logger.Warn("CreateBooking: client totalPrice=%.2f differs from computed %.2f, using computed",
			*req.ClientTotal, result.TotalPrice)
	}

	uc.metrics.BookingCreated(string(mode))

	// 10. Событие публикуется после коммита, ошибка не отменяет бронирование
	if err := uc.publisher.Publish(ctx, events.NewBookingCreated(result, now)); err != nil {
		uc.logger.Warn("CreateBooking: failed to publish event for booking id=%d: %v", result.ID, err)
	}

	uc.logger.Info("CreateBooking: created booking id=%d, tutor=%d, session=%s, total=%s",
		result.ID, result.TutorID, result.SessionDate.Format(domain.DateFormat), domain.FormatPrice(result.TotalPrice))

	return toResponse(result, rate, result.SessionStatusAt(now, uc.location)), nil
}

// checkRequest проверяет запрос относительно предложения
// Возвращает ставку за час или ошибку вместе с причиной отказа для метрики.
func (uc *UseCase) checkRequest(
	offering *domain.SubjectOffering,
	req *Request,
	day domain.WeekDay,
	window domain.TimeWindow,
	mode domain.TeachingMode,
) (float64, string, error) {
	// 4. Способ обучения доступен (ModeRate или legacy ставка)
	rate, err := domain.ResolveRate(offering, mode)
	if err != nil {
		return 0, reasonModeUnavailable, fmt.Errorf("%w: %v", ErrModeUnavailable, err)
	}

	// 5. В выбранный день есть окно нужной длительности
	eligible := domain.FilterEligibleWindows(offering.Availability.Windows(day), req.DurationHours)
	if len(eligible) == 0 {
		return 0, reasonNoAvailability, fmt.Errorf("%w: %s, %dh", ErrNoAvailability, day, req.DurationHours)
	}

	// 6. Окно входит в подходящие и само вмещает длительность
	if !domain.ContainsWindow(eligible, window) || !window.CanHost(req.DurationHours) {
		return 0, reasonInvalidSlot, fmt.Errorf("%w: %s on %s for %dh", ErrInvalidSlot, window, day, req.DurationHours)
	}

	// 7. Номер телефона
	if !contactNumberPattern.MatchString(req.ContactNumber) {
		return 0, reasonInvalidContact, fmt.Errorf("%w: expected %d-%d digits",
			ErrInvalidContact, domain.MinContactNumberLength, domain.MaxContactNumberLength)
	}

	// 8. Темы входят в выбранные тьютором
	for _, topicID := range req.TopicIDs {
		if !offering.HasTopic(strings.TrimSpace(topicID)) {
			return 0, reasonInvalidTopic, fmt.Errorf("%w: %q", ErrInvalidTopic, topicID)
		}
	}

	return rate, "", nil
}

func (uc *UseCase) reject(reason string, err error) error {
	uc.logger.Warn("CreateBooking: rejected (%s): %v", reason, err)
	uc.metrics.BookingRejected(reason)
	return err
}

// normalizeTopics обрезает пробелы и убирает повторы, порядок первого вхождения сохраняется
func normalizeTopics(topics []string) []string {
	result := make([]string, 0, len(topics))
	seen := make(map[string]struct{}, len(topics))
	for _, t := range topics {
		t = strings.TrimSpace(t)
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		result = append(result, t)
	}
	return result
}
