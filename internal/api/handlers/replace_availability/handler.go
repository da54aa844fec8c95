package replace_availability

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
	msgForbidden          = "менять расписание может только тьютор предложения"
	msgInvalidData        = "некорректное расписание"
	msgInvalidWindow      = "окно пустое или пересекается с другим окном дня"
	msgCapacityExceeded   = "в день можно добавить не больше 3 окон"
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

// Handle PUT /api/v1/offerings/{offeringId}/availability
// Body: {"availability": {"Monday": ["09:00 - 11:00"]}}, дни вне запроса не меняются
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	offeringID, err := strconv.ParseInt(mux.Vars(r)["offeringId"], 10, 64)
	if err != nil {
		h.logger.Warn("PUT /offerings/{id}/availability - Invalid offering ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidOfferingID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PUT /offerings/{id}/availability - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.ReplaceAvailabilityRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /offerings/{id}/availability - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.UserID = userID

	result, err := h.service.ReplaceAvailability(r.Context(), offeringID, &req)
	if err != nil {
		switch {
		case errors.Is(err, offerings.ErrOfferingNotFound):
			h.logger.Warn("PUT /offerings/{id}/availability - Offering not found: offering_id=%d", offeringID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, offerings.ErrAccessDenied):
			h.logger.Warn("PUT /offerings/{id}/availability - Access denied: offering_id=%d, user_id=%d",
				offeringID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, offerings.ErrCapacityExceeded):
			h.logger.Warn("PUT /offerings/{id}/availability - Capacity exceeded: offering_id=%d, error=%v",
				offeringID, err)
			handlers.RespondConflict(w, msgCapacityExceeded)

		case errors.Is(err, offerings.ErrInvalidWindow):
			h.logger.Warn("PUT /offerings/{id}/availability - Invalid window: offering_id=%d, error=%v",
				offeringID, err)
			handlers.RespondBadRequest(w, msgInvalidWindow)

		case errors.Is(err, offerings.ErrInvalidInput):
			h.logger.Warn("PUT /offerings/{id}/availability - Invalid data: offering_id=%d, error=%v",
				offeringID, err)
			handlers.RespondBadRequest(w, msgInvalidData)

		default:
			h.logger.Error("PUT /offerings/{id}/availability - Failed to replace availability: offering_id=%d, error=%v",
				offeringID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /offerings/{id}/availability - Availability replaced successfully: offering_id=%d, days=%d",
		offeringID, len(req.Availability))
	handlers.RespondJSON(w, http.StatusOK, result)
}
