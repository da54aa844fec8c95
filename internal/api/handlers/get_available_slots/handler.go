package get_available_slots

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-TutorBooking/internal/api/handlers"
	getAvailableSlots "github.com/m04kA/SMC-TutorBooking/internal/usecase/get_available_slots"
)

const (
	msgInvalidOfferingID = "некорректный ID предложения"
	msgMissingParams     = "параметры day, duration и mode обязательны"
	msgInvalidDuration   = "некорректная длительность, ожидается 1, 2 или 3"
	msgInvalidInput      = "некорректные параметры запроса"
	msgOfferingNotFound  = "предложение тьютора не найдено"
	msgModeUnavailable   = "выбранный способ обучения недоступен"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/offerings/{offeringId}/available-slots
// Query params: day (required), duration (required, 1-3), mode (required)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Извлекаем offeringId из URL
	offeringID, err := strconv.ParseInt(mux.Vars(r)["offeringId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /offerings/{id}/available-slots - Invalid offering ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidOfferingID)
		return
	}

	// Извлекаем query параметры
	query := r.URL.Query()
	day, durationStr, mode := query.Get("day"), query.Get("duration"), query.Get("mode")
	if day == "" || durationStr == "" || mode == "" {
		h.logger.Warn("GET /offerings/{id}/available-slots - Missing params: offering_id=%d", offeringID)
		handlers.RespondBadRequest(w, msgMissingParams)
		return
	}

	duration, err := strconv.Atoi(durationStr)
	if err != nil {
		h.logger.Warn("GET /offerings/{id}/available-slots - Invalid duration: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDuration)
		return
	}

	// Вызываем use case
	result, err := h.useCase.Execute(r.Context(), &getAvailableSlots.Request{
		OfferingID:    offeringID,
		Day:           day,
		DurationHours: duration,
		Mode:          mode,
	})
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrInvalidInput):
			h.logger.Warn("GET /offerings/{id}/available-slots - Invalid input: offering_id=%d, error=%v", offeringID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, getAvailableSlots.ErrOfferingNotFound):
			h.logger.Warn("GET /offerings/{id}/available-slots - Offering not found: offering_id=%d", offeringID)
			handlers.RespondNotFound(w, msgOfferingNotFound)

		case errors.Is(err, getAvailableSlots.ErrModeUnavailable):
			h.logger.Warn("GET /offerings/{id}/available-slots - Mode unavailable: offering_id=%d, mode=%s", offeringID, mode)
			handlers.RespondUnprocessable(w, msgModeUnavailable)

		default:
			h.logger.Error("GET /offerings/{id}/available-slots - Failed to get slots: offering_id=%d, error=%v",
				offeringID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /offerings/{id}/available-slots - Slots retrieved successfully: offering_id=%d, day=%s, slots_count=%d",
		offeringID, day, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
