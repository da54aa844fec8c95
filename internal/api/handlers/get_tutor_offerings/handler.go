package get_tutor_offerings

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-TutorBooking/internal/api/handlers"
)

const msgInvalidTutorID = "некорректный ID тьютора"

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

// Handle GET /api/v1/tutors/{userId}/offerings
// Публичный endpoint - без авторизации
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	tutorID, err := strconv.ParseInt(mux.Vars(r)["userId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /tutors/{userId}/offerings - Invalid tutor ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTutorID)
		return
	}

	result, err := h.service.ListByTutor(r.Context(), tutorID)
	if err != nil {
		h.logger.Error("GET /tutors/{userId}/offerings - Failed to list offerings: tutor_id=%d, error=%v",
			tutorID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /tutors/{userId}/offerings - Offerings retrieved successfully: tutor_id=%d, count=%d",
		tutorID, len(result.Offerings))
	handlers.RespondJSON(w, http.StatusOK, result)
}
