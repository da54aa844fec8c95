package get_offering

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-TutorBooking/internal/api/handlers"
	"github.com/m04kA/SMC-TutorBooking/internal/service/offerings"
)

const (
	msgInvalidOfferingID = "некорректный ID предложения"
	msgNotFound          = "предложение тьютора не найдено"
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

// Handle GET /api/v1/offerings/{offeringId}
// Публичный endpoint - без авторизации
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Извлекаем offeringId из URL
	offeringID, err := strconv.ParseInt(mux.Vars(r)["offeringId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /offerings/{id} - Invalid offering ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidOfferingID)
		return
	}

	result, err := h.service.GetByID(r.Context(), offeringID)
	if err != nil {
		if errors.Is(err, offerings.ErrOfferingNotFound) {
			h.logger.Warn("GET /offerings/{id} - Offering not found: offering_id=%d", offeringID)
			handlers.RespondNotFound(w, msgNotFound)
			return
		}

		h.logger.Error("GET /offerings/{id} - Failed to get offering: offering_id=%d, error=%v",
			offeringID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /offerings/{id} - Offering retrieved successfully: offering_id=%d, tutor_id=%d",
		offeringID, result.TutorID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
