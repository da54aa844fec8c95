package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-TutorBooking/internal/api/handlers"
	"github.com/m04kA/SMC-TutorBooking/internal/api/middleware"
	createBooking "github.com/m04kA/SMC-TutorBooking/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgInvalidInput       = "некорректные данные бронирования"
	msgOfferingNotFound   = "предложение тьютора не найдено"
	msgModeUnavailable    = "выбранный способ обучения недоступен"
	msgNoAvailability     = "в выбранный день нет окна нужной длительности"
	msgInvalidSlot        = "выбранное время недоступно для этой длительности"
	msgInvalidContact     = "некорректный номер телефона, ожидается от 10 до 15 цифр"
	msgInvalidTopic       = "тема не входит в выбранные тьютором"
	msgSlotConflict       = "слот уже забронирован, выберите другое время"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Получаем userID из контекста (через middleware Auth)
	studentID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Вызываем use case
	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(studentID))
	if err != nil {
		offeringID := int64(req.Subject)

		switch {
		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: student_id=%d, error=%v", studentID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, createBooking.ErrOfferingNotFound):
			h.logger.Warn("POST /bookings - Offering not found: offering_id=%d", offeringID)
			handlers.RespondNotFound(w, msgOfferingNotFound)

		case errors.Is(err, createBooking.ErrModeUnavailable):
			h.logger.Warn("POST /bookings - Mode unavailable: offering_id=%d, mode=%s", offeringID, req.LearningMethod)
			handlers.RespondUnprocessable(w, msgModeUnavailable)

		case errors.Is(err, createBooking.ErrNoAvailability):
			h.logger.Warn("POST /bookings - No availability: offering_id=%d, day=%s, duration=%d", offeringID, req.Day, req.Duration)
			handlers.RespondUnprocessable(w, msgNoAvailability)

		case errors.Is(err, createBooking.ErrInvalidSlot):
			h.logger.Warn("POST /bookings - Invalid slot: offering_id=%d, slot=%s", offeringID, req.TimeSlot)
			handlers.RespondUnprocessable(w, msgInvalidSlot)

		case errors.Is(err, createBooking.ErrInvalidContact):
			h.logger.Warn("POST /bookings - Invalid contact: student_id=%d", studentID)
			handlers.RespondBadRequest(w, msgInvalidContact)

		case errors.Is(err, createBooking.ErrInvalidTopic):
			h.logger.Warn("POST /bookings - Invalid topic: offering_id=%d, topics=%v", offeringID, req.Topics)
			handlers.RespondBadRequest(w, msgInvalidTopic)

		case errors.Is(err, createBooking.ErrSlotConflict):
			h.logger.Warn("POST /bookings - Slot conflict: offering_id=%d, day=%s, slot=%s", offeringID, req.Day, req.TimeSlot)
			handlers.RespondConflict(w, msgSlotConflict)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: student_id=%d, offering_id=%d, error=%v",
				studentID, offeringID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%d, student_id=%d, tutor_id=%d",
		result.ID, studentID, result.TutorID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
