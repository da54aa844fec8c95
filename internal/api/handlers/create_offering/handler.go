package create_offering

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-TutorBooking/internal/api/handlers"
	"github.com/m04kA/SMC-TutorBooking/internal/api/middleware"
	"github.com/m04kA/SMC-TutorBooking/internal/service/offerings"
	"github.com/m04kA/SMC-TutorBooking/internal/service/offerings/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgInvalidData        = "некорректные данные предложения"
	msgInvalidWindow      = "окно пустое или пересекается с другим окном дня"
	msgCapacityExceeded   = "в день можно добавить не больше 3 окон"
	msgForbidden          = "создавать предложения может только тьютор"
	msgAlreadyExists      = "предложение по этому предмету уже существует"
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

// Handle POST /api/v1/offerings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /offerings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.CreateOfferingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /offerings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.UserID = userID

	result, err := h.service.Create(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, offerings.ErrInvalidInput):
			h.logger.Warn("POST /offerings - Invalid data: user_id=%d, error=%v", userID, err)
			handlers.RespondBadRequest(w, msgInvalidData)

		case errors.Is(err, offerings.ErrInvalidWindow):
			h.logger.Warn("POST /offerings - Invalid window: user_id=%d, error=%v", userID, err)
			handlers.RespondBadRequest(w, msgInvalidWindow)

		case errors.Is(err, offerings.ErrCapacityExceeded):
			h.logger.Warn("POST /offerings - Capacity exceeded: user_id=%d, error=%v", userID, err)
			handlers.RespondConflict(w, msgCapacityExceeded)

		case errors.Is(err, offerings.ErrAccessDenied):
			h.logger.Warn("POST /offerings - Access denied: user_id=%d", userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, offerings.ErrOfferingAlreadyExists):
			h.logger.Warn("POST /offerings - Already exists: user_id=%d, subject_id=%d", userID, req.SubjectID)
			handlers.RespondConflict(w, msgAlreadyExists)

		default:
			h.logger.Error("POST /offerings - Failed to create offering: user_id=%d, error=%v", userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /offerings - Offering created successfully: offering_id=%d, tutor_id=%d",
		result.ID, userID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
