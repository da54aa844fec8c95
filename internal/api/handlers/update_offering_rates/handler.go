package update_offering_rates

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-TutorBooking/internal/api/handlers"
	"github.com/m04kA/SMC-TutorBooking/internal/api/middleware"
	"github.com/m04kA/SMC-TutorBooking/internal/service/offerings"
	"github.com/m04kA/SMC-TutorBooking/internal/service/offerings/models"
)

const (
	msgInvalidOfferingID  = "некорректный ID предложения"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgNotFound           = "предложение тьютора не найдено"
	msgForbidden          = "доступ запрещен"
	msgInvalidData        = "некорректные ставки или темы"
)

type Handler struct {
	service OfferingService
	logger  Logger
}

func NewHandler(service OfferingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PUT /api/v1/offerings/{offeringId}/rates
// Body: {"selectedTopics": [...], "modeRates": [...], "legacyRates": {...}}, отсутствующее поле не меняется
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	offeringID, err := strconv.ParseInt(mux.Vars(r)["offeringId"], 10, 64)
	if err != nil {
		h.logger.Warn("PUT /offerings/{id}/rates - Invalid offering ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidOfferingID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PUT /offerings/{id}/rates - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.UpdateRatesRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /offerings/{id}/rates - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.UserID = userID

	// Сервис сам проверит, что пользователь - тьютор предложения
	result, err := h.service.UpdateRates(r.Context(), offeringID, &req)
	if err != nil {
		switch {
		case errors.Is(err, offerings.ErrOfferingNotFound):
			h.logger.Warn("PUT /offerings/{id}/rates - Offering not found: offering_id=%d", offeringID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, offerings.ErrAccessDenied):
			h.logger.Warn("PUT /offerings/{id}/rates - Access denied: offering_id=%d, user_id=%d",
				offeringID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, offerings.ErrInvalidInput):
			h.logger.Warn("PUT /offerings/{id}/rates - Invalid data: offering_id=%d, error=%v",
				offeringID, err)
			handlers.RespondBadRequest(w, msgInvalidData)

		default:
			h.logger.Error("PUT /offerings/{id}/rates - Failed to update rates: offering_id=%d, error=%v",
				offeringID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /offerings/{id}/rates - Rates updated successfully: offering_id=%d", offeringID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
